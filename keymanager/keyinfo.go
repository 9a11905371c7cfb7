// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package keymanager

import (
	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/dom"
)

const namespaceDSig = "http://www.w3.org/2000/09/xmldsig#"

// KeyNameWriter implements xmlenc.KeyInfoWriter by recording the resolved
// key id as a dsig:KeyName child of KeyInfo, replacing any KeyName already
// present. It does not touch other KeyInfo children (RetrievalMethod,
// X509Data, ...), so a caller combining key transport with a static id is
// free to add those separately.
type KeyNameWriter struct{}

// Write implements xmlenc.KeyInfoWriter.
func (KeyNameWriter) Write(keyInfo *dom.Node, _ xmlenc.KeyRequest, key *xmlenc.Key) error {
	if key.ID == "" {
		return nil
	}

	for _, child := range keyInfo.Children {
		if child.Is(namespaceDSig, "KeyName") {
			child.Children = nil
			child.Text = []byte(key.ID)
			return nil
		}
	}

	keyName := dom.CreateElement(namespaceDSig, "KeyName")
	keyName.Text = []byte(key.ID)
	dom.AppendChild(keyInfo, keyName)
	return nil
}
