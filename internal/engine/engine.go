// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

// Package engine wires the reusable pieces (transform registry, key
// manager, dsig Transform/CipherReference fetch) into a ready-to-use
// xmlenc.Context, shared by cmd/xmlencctl and cmd/xmlencd so neither
// command reimplements Context construction.
package engine

import (
	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/transform"
)

// New builds a Context around km, using registry for both declared
// EncryptionMethod/Transform ids and the CipherReference TransformState
// factory, and fetch (transform.DefaultFetcher if nil) for URI resolution.
func New(km xmlenc.KeyManager, kiw xmlenc.KeyInfoWriter, registry *transform.Registry, fetch transform.Fetcher) *xmlenc.Context {
	if registry == nil {
		registry = transform.NewRegistry()
	}
	if fetch == nil {
		fetch = transform.DefaultFetcher
	}

	return &xmlenc.Context{
		KeyManager:            km,
		KeyInfoWriter:         kiw,
		TransformStateFactory: registry.NewTransformStateFactory(fetch),
		NewTransform:          registry.NewTransformFunc(),
		NewURITransform: func(uri string) (xmlenc.Transform, error) {
			return transform.NewInputURI(uri, fetch)
		},
	}
}
