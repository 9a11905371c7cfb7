// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

// Protocol namespace and Type-attribute constants. spec.md's Design Notes
// call out that the original source keeps these as two module-level mutable
// byte strings; here they are plain constants in one place.
const (
	NamespaceEnc  = "http://www.w3.org/2001/04/xmlenc#"
	NamespaceDSig = "http://www.w3.org/2000/09/xmldsig#"

	// TypeElement marks plaintext as a well-formed element subtree; on
	// decrypt it replaces the whole EncryptedData element.
	TypeElement = "http://www.w3.org/2001/04/xmlenc#Element"
	// TypeContent marks plaintext as a sequence of children; on decrypt
	// only EncryptedData's position among its siblings is replaced by
	// those children, not by a single wrapping element.
	TypeContent = "http://www.w3.org/2001/04/xmlenc#Content"
)

// element local names within NamespaceEnc/NamespaceDSig, matched via
// dom.Node.Is.
const (
	elEncryptedData       = "EncryptedData"
	elEncryptionMethod    = "EncryptionMethod"
	elKeyInfo             = "KeyInfo"
	elCipherData          = "CipherData"
	elCipherValue         = "CipherValue"
	elCipherReference     = "CipherReference"
	elTransforms          = "Transforms"
	elTransform           = "Transform"
	elEncryptionProperties = "EncryptionProperties"
)

// Internal transform ids the engine itself appends/prepends around
// whatever method transform the grammar names (spec.md §4.2 step 8, §4.4).
// TransformIDBase64 reuses the real XML-DSig Base64 transform URI; it runs
// in either direction via Transform.SetDirection. TransformIDMemorySink has
// no XML-Encryption URI of its own — it is a pure engine-internal sink
// stage, never named in a document.
const (
	TransformIDBase64     = "http://www.w3.org/2000/09/xmldsig#base64"
	TransformIDMemorySink = "xmlenc:memory-sink"
)
