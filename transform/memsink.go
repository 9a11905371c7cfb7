// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package transform

import "github.com/readium/xmlenc"

// MemorySink is the terminal memory-buffer transform every pipeline ends
// in: it has nothing downstream, so it simply accumulates whatever it's
// written and serves it back byte-for-byte on Read.
type MemorySink struct {
	buf    []byte
	offset int
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) ID() string                      { return xmlenc.TransformIDMemorySink }
func (s *MemorySink) Capabilities() xmlenc.Capability { return xmlenc.CapBinary }
func (s *MemorySink) AddKey(key []byte) error         { return nil }
func (s *MemorySink) SetDirection(encrypt bool)       {}
func (s *MemorySink) EncKeyType() string              { return "" }
func (s *MemorySink) DecKeyType() string              { return "" }
func (s *MemorySink) KeyID() string                   { return "" }

func (s *MemorySink) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	return len(p), nil
}

func (s *MemorySink) Flush() error { return nil }

func (s *MemorySink) Read(p []byte) (int, error) {
	if s.offset >= len(s.buf) {
		return 0, nil
	}
	n := copy(p, s.buf[s.offset:])
	s.offset += n
	return n, nil
}

// Buffer returns the bytes accumulated so far, without consuming them.
func (s *MemorySink) Buffer() []byte { return s.buf }

func (s *MemorySink) Close() error {
	s.buf = nil
	s.offset = 0
	return nil
}
