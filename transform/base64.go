// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package transform

import (
	"encoding/base64"

	"github.com/readium/xmlenc"
)

// Base64 is the dsig base64 codec transform. It buffers everything written
// and produces its output on Flush — base64 can't be encoded or decoded a
// partial byte at a time without tracking leftover bits, and nothing in
// this engine streams output before the end-of-stream barrier anyway.
type Base64 struct {
	encrypt bool
	in      []byte
	out     []byte
	offset  int
}

// NewBase64 returns a direction-less Base64 transform; call SetDirection
// before use.
func NewBase64() *Base64 { return &Base64{} }

func (b *Base64) ID() string                  { return xmlenc.TransformIDBase64 }
func (b *Base64) Capabilities() xmlenc.Capability { return xmlenc.CapBinary }
func (b *Base64) AddKey(key []byte) error     { return nil }
func (b *Base64) SetDirection(encrypt bool)   { b.encrypt = encrypt }
func (b *Base64) EncKeyType() string          { return "" }
func (b *Base64) DecKeyType() string          { return "" }
func (b *Base64) KeyID() string               { return "" }

func (b *Base64) Write(p []byte) (int, error) {
	b.in = append(b.in, p...)
	return len(p), nil
}

func (b *Base64) Flush() error {
	if b.encrypt {
		b.out = []byte(base64.StdEncoding.EncodeToString(trimText(b.in)))
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(string(trimText(b.in)))
	if err != nil {
		return err
	}
	b.out = decoded
	return nil
}

func (b *Base64) Read(p []byte) (int, error) {
	if b.offset >= len(b.out) {
		return 0, nil
	}
	n := copy(p, b.out[b.offset:])
	b.offset += n
	return n, nil
}

func (b *Base64) Close() error {
	b.in = nil
	b.out = nil
	return nil
}

// trimText strips the leading/trailing newlines the CipherValue writer
// wraps ciphertext in (spec.md §4.2's CipherData writer: `"\n" + b + "\n"`)
// along with any other incidental whitespace a pretty-printed document
// introduces around base64 text.
func trimText(b []byte) []byte {
	start, end := 0, len(b)
	isSpace := func(c byte) bool { return c == '\n' || c == '\r' || c == '\t' || c == ' ' }
	for start < end && isSpace(b[start]) {
		start++
	}
	for end > start && isSpace(b[end-1]) {
		end--
	}
	out := make([]byte, 0, end-start)
	for _, c := range b[start:end] {
		if !isSpace(c) {
			out = append(out, c)
		}
	}
	return out
}
