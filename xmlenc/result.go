// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

import "github.com/readium/xmlenc/dom"

// Result is the caller-facing record of a completed encrypt or decrypt
// call (spec.md §3/§4.3). Either the caller takes ownership of Key/Buffer
// (the common case: a successful call returns a *Result), or a driver
// discards it on an internal error path.
type Result struct {
	Encrypt bool

	// EncryptedData is the element this result was produced from or
	// written into.
	EncryptedData *dom.Node

	Replaced bool
	Key      *Key
	Method   string

	Buffer []byte

	ID       string
	Type     string
	MimeType string
	Encoding string
}

func newResult(encrypt bool, node *dom.Node, key *Key) *Result {
	r := &Result{Encrypt: encrypt, EncryptedData: node}
	if key != nil {
		r.Key = key.Duplicate()
	}
	if id, ok := node.Attribute("Id"); ok {
		r.ID = id
	}
	if typ, ok := node.Attribute("Type"); ok {
		r.Type = typ
	}
	if mime, ok := node.Attribute("MimeType"); ok {
		r.MimeType = mime
	}
	if enc, ok := node.Attribute("Encoding"); ok {
		r.Encoding = enc
	}
	return r
}
