// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package transform

// Algorithm identifiers. The AES-CBC and RSA-OAEP ids are the real W3C XML
// Encryption URIs; AlgorithmChaCha20Poly1305 is a vendor extension (no W3C
// URI exists for it) offered through the same registry mechanism as the
// standard ciphers, per SPEC_FULL.md's "Supplemented features".
const (
	AlgorithmAES128CBC        = "http://www.w3.org/2001/04/xmlenc#aes128-cbc"
	AlgorithmAES192CBC        = "http://www.w3.org/2001/04/xmlenc#aes192-cbc"
	AlgorithmAES256CBC        = "http://www.w3.org/2001/04/xmlenc#aes256-cbc"
	AlgorithmRSAOAEP          = "http://www.w3.org/2001/04/xmlenc#rsa-oaep-mgf1p"
	AlgorithmChaCha20Poly1305 = "https://readium.org/xmlenc-extensions#chacha20-poly1305"
)
