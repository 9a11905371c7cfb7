// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

// KeyOrigin records where a Key came from, preserved across duplication so
// a caller can distinguish a statically-configured key from one derived via
// KeyInfo (spec.md §9, "Key lifetime & origin").
type KeyOrigin int

const (
	KeyOriginUnknown KeyOrigin = iota
	KeyOriginCaller
	KeyOriginKeyManager
)

// Key is the resolved key material attached to a Result.
type Key struct {
	Bytes  []byte
	Type   string
	ID     string
	Origin KeyOrigin
}

// Duplicate returns an independent copy with Origin preserved verbatim.
func (k *Key) Duplicate() *Key {
	if k == nil {
		return nil
	}
	cp := &Key{Type: k.Type, ID: k.ID, Origin: k.Origin}
	cp.Bytes = append([]byte(nil), k.Bytes...)
	return cp
}
