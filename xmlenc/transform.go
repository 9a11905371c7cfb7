// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

// Capability is a bitset a Transform declares about itself. The engine
// only ever requires Binary; it is kept as a bitset rather than a bool
// because spec.md §6 frames it as one of potentially several declared
// capabilities (the original source reserves bits for XML-node transforms
// the engine never drives).
type Capability uint

const (
	CapBinary Capability = 1 << iota
)

// Transform is the BinaryTransform contract spec.md §6 requires of
// collaborators: an opaque streaming codec that pushes or pulls bytes and
// declares the key-type(s) it needs. Concrete realizations (base64 codec,
// memory sink, URI source, ciphers) live in package
// github.com/readium/xmlenc/transform; the engine only ever holds this
// interface.
//
// Read's end-of-stream contract is explicit (spec.md §9 calls this out as
// an implicit contract in the source that should be made explicit here):
// a call returning (0, nil) means no more output is currently available;
// once Flush has been called and propagated through the whole pipeline, a
// (0, nil) Read means the transform is permanently drained.
type Transform interface {
	ID() string
	Capabilities() Capability

	AddKey(key []byte) error
	SetDirection(encrypt bool)

	Write(p []byte) (int, error)
	Flush() error
	Read(p []byte) (int, error)

	// EncKeyType/DecKeyType/KeyID are used by key resolution (spec.md
	// §4.2 step 5) to populate a KeyRequest before invoking the
	// KeyManager callback.
	EncKeyType() string
	DecKeyType() string
	KeyID() string

	// Close tears down the transform. Pipeline.Close calls this on every
	// transform it owns; it is always safe to call more than once.
	Close() error
}

// TransformState is the narrow interface to the generic CipherReference
// URI-fetch-plus-declared-transforms collaborator spec.md §1 names as out
// of scope ("The generic TransformState used for CipherReference URL
// fetching + transform application — consumed through a narrow
// interface"). The decrypt driver fetches via a TransformState, applies
// the dsig Transforms named in the CipherReference, then adopts the
// pipeline's own cipher transforms into it one by one before asking for
// the final bytes (spec.md §4.4).
type TransformState interface {
	// ApplyTransform resolves and runs one named dsig transform (e.g. a
	// base64 decode) against the state's current buffer.
	ApplyTransform(id string) error
	// AdoptTransform keeps t as the new tail of the state's internal
	// chain, matching the source's "transfer each transform from head to
	// the TransformState" handoff. The state's buffer is run through the
	// adopted chain no later than ResultBinary (transform.URIState does it
	// there).
	AdoptTransform(t Transform) error
	// ResultBinary finalizes and returns the accumulated bytes.
	ResultBinary() ([]byte, error)
}

// TransformStateFactory builds a TransformState for a CipherReference URI.
// It is a Context-level collaborator for the same reason KeyManager is:
// the fetch mechanism (local file, http(s), s3, ...) is policy, not
// something the engine decides.
type TransformStateFactory func(uri string) (TransformState, error)
