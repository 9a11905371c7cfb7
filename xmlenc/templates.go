// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

import (
	"github.com/readium/xmlenc/dom"
	uuid "github.com/satori/go.uuid"
)

// Create builds a fresh, empty EncryptedData skeleton: an empty CipherData
// child and whichever attributes were supplied. If id is empty, one is
// generated (spec.md §4.6's "create(id?, ...)"; the teacher's own
// satori/go.uuid dependency backs the generated Id).
func Create(id, typ, mimeType, encoding string) *dom.Node {
	if id == "" {
		id = "xmlenc-" + uuid.NewV4().String()
	}

	n := dom.CreateElement(NamespaceEnc, elEncryptedData)
	n.SetAttribute("Id", id)
	if typ != "" {
		n.SetAttribute("Type", typ)
	}
	if mimeType != "" {
		n.SetAttribute("MimeType", mimeType)
	}
	if encoding != "" {
		n.SetAttribute("Encoding", encoding)
	}

	cipherData := dom.CreateElement(NamespaceEnc, elCipherData)
	dom.AppendChild(n, cipherData)
	return n
}

// AddEncryptionMethod inserts EncryptionMethod as the first element child
// of enc. It fails with NodeAlreadyExists if one is already present; no
// mutation happens on that path (spec.md §8 property 3: idempotent by
// failure).
func AddEncryptionMethod(enc *dom.Node, methodID string) (*dom.Node, error) {
	if existing := findChild(enc, NamespaceEnc, elEncryptionMethod); existing != nil {
		return nil, newError(KindNodeAlreadyExists, elEncryptionMethod, "")
	}
	m := dom.CreateElement(NamespaceEnc, elEncryptionMethod)
	m.SetAttribute("Algorithm", methodID)
	dom.InsertChildAt(enc, 0, m)
	return m, nil
}

// AddKeyInfo inserts KeyInfo after EncryptionMethod if present, else first.
func AddKeyInfo(enc *dom.Node) (*dom.Node, error) {
	if existing := findChild(enc, NamespaceDSig, elKeyInfo); existing != nil {
		return nil, newError(KindNodeAlreadyExists, elKeyInfo, "")
	}
	idx := 0
	if m := findChild(enc, NamespaceEnc, elEncryptionMethod); m != nil {
		idx = indexOf(enc, m) + 1
	}
	k := dom.CreateElement(NamespaceDSig, elKeyInfo)
	dom.InsertChildAt(enc, idx, k)
	return k, nil
}

// AddEncryptionProperties appends an (initially empty) EncryptionProperties
// container at the end of enc.
func AddEncryptionProperties(enc *dom.Node, id string) (*dom.Node, error) {
	if existing := findChild(enc, NamespaceEnc, elEncryptionProperties); existing != nil {
		return nil, newError(KindNodeAlreadyExists, elEncryptionProperties, "")
	}
	p := dom.CreateElement(NamespaceEnc, elEncryptionProperties)
	if id != "" {
		p.SetAttribute("Id", id)
	}
	dom.AppendChild(enc, p)
	return p, nil
}

// AddEncryptionProperty appends a property to enc's EncryptionProperties,
// creating the container first if needed.
func AddEncryptionProperty(enc *dom.Node, id, target string) (*dom.Node, error) {
	props := findChild(enc, NamespaceEnc, elEncryptionProperties)
	if props == nil {
		var err error
		props, err = AddEncryptionProperties(enc, "")
		if err != nil {
			return nil, err
		}
	}
	prop := dom.CreateElement(NamespaceEnc, "EncryptionProperty")
	if id != "" {
		prop.SetAttribute("Id", id)
	}
	if target != "" {
		prop.SetAttribute("Target", target)
	}
	dom.AppendChild(props, prop)
	return prop, nil
}

// AddCipherValue creates an empty CipherValue inside enc's CipherData. It
// fails with NodeAlreadyExists if either CipherValue or CipherReference is
// already present (spec.md §3's sibling-exclusivity invariant, §8 property
// 4), validated before any node is created.
func AddCipherValue(enc *dom.Node) (*dom.Node, error) {
	cd, err := requireCipherData(enc)
	if err != nil {
		return nil, err
	}
	if existing := cd.FirstElementChild(); existing != nil {
		return nil, newError(KindNodeAlreadyExists, existing.Name.Local, "")
	}
	cv := dom.CreateElement(NamespaceEnc, elCipherValue)
	dom.AppendChild(cd, cv)
	return cv, nil
}

// AddCipherReference creates a CipherReference inside enc's CipherData,
// with the same sibling-exclusivity check as AddCipherValue.
func AddCipherReference(enc *dom.Node, uri string) (*dom.Node, error) {
	cd, err := requireCipherData(enc)
	if err != nil {
		return nil, err
	}
	if existing := cd.FirstElementChild(); existing != nil {
		return nil, newError(KindNodeAlreadyExists, existing.Name.Local, "")
	}
	cr := dom.CreateElement(NamespaceEnc, elCipherReference)
	if uri != "" {
		cr.SetAttribute("URI", uri)
	}
	dom.AppendChild(cd, cr)
	return cr, nil
}

// AddCipherReferenceTransform appends a dsig Transform id under
// CipherReference/Transforms, creating Transforms on demand.
func AddCipherReferenceTransform(enc *dom.Node, transformID string) (*dom.Node, error) {
	cd, err := requireCipherData(enc)
	if err != nil {
		return nil, err
	}
	cr := cd.FirstElementChild()
	if cr == nil || !cr.Is(NamespaceEnc, elCipherReference) {
		return nil, newError(KindNodeNotFound, elCipherReference, "")
	}
	transforms := findChild(cr, NamespaceDSig, elTransforms)
	if transforms == nil {
		transforms = dom.CreateElement(NamespaceDSig, elTransforms)
		dom.AppendChild(cr, transforms)
	}
	t := dom.CreateElement(NamespaceDSig, elTransform)
	t.SetAttribute("Algorithm", transformID)
	dom.AppendChild(transforms, t)
	return t, nil
}

func requireCipherData(enc *dom.Node) (*dom.Node, error) {
	cd := findChild(enc, NamespaceEnc, elCipherData)
	if cd == nil {
		return nil, newError(KindNodeNotFound, elCipherData, "")
	}
	return cd, nil
}

func findChild(n *dom.Node, space, local string) *dom.Node {
	for _, c := range n.Children {
		if c.Is(space, local) {
			return c
		}
	}
	return nil
}

func indexOf(parent, child *dom.Node) int {
	for i, c := range parent.Children {
		if c == child {
			return i
		}
	}
	return -1
}
