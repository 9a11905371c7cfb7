// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

// Package xmlenc implements the processing model of the W3C XML Encryption
// Recommendation: given an EncryptedData element, it drives a streaming
// pipeline of binary transforms in either direction to
// encrypt a plaintext into the element's CipherData, or decrypt a
// CipherData back into plaintext, optionally splicing the result into the
// surrounding document.
//
// The engine does not implement cryptography, general XML parsing, key
// storage, or network I/O itself. Those are external collaborators
// consumed through narrow interfaces: Transform for the cipher/codec/sink
// chain, KeyManager for key resolution, TransformState for CipherReference
// URI fetch plus declared dsig transforms, and package dom for tree
// navigation. Concrete realizations of Transform and TransformState live in
// package github.com/readium/xmlenc/transform.
package xmlenc
