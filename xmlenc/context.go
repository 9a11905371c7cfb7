// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

import "github.com/readium/xmlenc/dom"

// KeyUsage says which direction a requested key will be used for.
type KeyUsage int

const (
	KeyUsageEncrypt KeyUsage = iota
	KeyUsageDecrypt
)

// KeyRequest is populated by the engine immediately before invoking
// KeyManager.GetKey. spec.md §9 calls out the source's mutable, reused
// keyManagerContext as "a parameter-passing workaround for lack of
// closures" and recommends an explicit argument instead; KeyRequest is that
// argument, built fresh per call rather than mutated in place.
type KeyRequest struct {
	Type  string
	Usage KeyUsage
	ID    string
}

// KeyManager resolves key material, given whatever KeyInfo node (if any)
// accompanied the EncryptedData, plus the KeyRequest the engine derived
// from the EncryptionMethod. It is an external collaborator (spec.md §6);
// this engine only ever calls GetKey.
type KeyManager interface {
	GetKey(keyInfo *dom.Node, req KeyRequest) (*Key, error)
}

// KeyInfoWriter rewrites a KeyInfo subtree to describe the key actually
// used, on encrypt (spec.md §4.2 step 5). It is an external collaborator;
// a Context with a nil KeyInfoWriter simply never rewrites KeyInfo.
type KeyInfoWriter interface {
	Write(keyInfo *dom.Node, req KeyRequest, key *Key) error
}

// Context carries everything a Processing Context needs per spec.md §4.3:
// a KeyManager, an optional default EncryptionMethod (used when a template
// has no EncryptionMethod child of its own), and the ignoreType policy
// flag that suppresses DOM splicing regardless of the element's Type.
type Context struct {
	KeyManager      KeyManager
	KeyInfoWriter   KeyInfoWriter
	DefaultMethod   string
	IgnoreType      bool
	TransformStateFactory TransformStateFactory
	NewTransform    func(id string) (Transform, error)
	// NewURITransform builds the InputUri source transform for the
	// EncryptURI entry point (spec.md §4.5). It is distinct from
	// NewTransform because a URI isn't a declared algorithm id — it's
	// supplied directly by the caller of EncryptURI.
	NewURITransform func(uri string) (Transform, error)
}
