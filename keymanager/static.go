// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

// Package keymanager provides xmlenc.KeyManager implementations: an
// in-memory static manager for tests and small deployments, and a
// database-backed one (package sqlstore) mirroring the teacher's own
// prepared-statement persistence style.
package keymanager

import (
	"fmt"
	"sync"

	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/dom"
)

// Static is the reference xmlenc.KeyManager: a fixed table of keys by id,
// plus an optional default used when no KeyRequest.ID is given (or none
// matches). It never inspects the KeyInfo node — callers that need
// KeyInfo-driven resolution (e.g. RetrievalMethod/KeyName lookups) should
// wrap or replace it.
type Static struct {
	mu      sync.RWMutex
	keys    map[string][]byte
	keyType map[string]string
	def     string
}

// NewStatic returns an empty key table.
func NewStatic() *Static {
	return &Static{keys: map[string][]byte{}, keyType: map[string]string{}}
}

// Add registers key under id. If this is the first key added, it also
// becomes the default returned for an empty/unmatched KeyRequest.ID.
func (s *Static) Add(id string, key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[id] = key
	if s.def == "" {
		s.def = id
	}
}

// GetKey implements xmlenc.KeyManager.
func (s *Static) GetKey(_ *dom.Node, req xmlenc.KeyRequest) (*xmlenc.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := req.ID
	if id == "" || s.keys[id] == nil {
		id = s.def
	}
	key, ok := s.keys[id]
	if !ok {
		return nil, fmt.Errorf("keymanager: no key registered for id %q", id)
	}
	return &xmlenc.Key{Bytes: append([]byte(nil), key...), ID: id, Type: req.Type}, nil
}
