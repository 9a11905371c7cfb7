// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package transform

import "github.com/readium/xmlenc"

// URIState is a concrete xmlenc.TransformState: it fetches a
// CipherReference URI eagerly, applies declared dsig Transforms against
// the fetched bytes one at a time, then — once the decrypt driver adopts
// the pipeline's own cipher/base64 transforms into it — runs those too,
// finally handing back the recovered plaintext.
type URIState struct {
	registry *Registry
	buf      []byte
	adopted  []xmlenc.Transform
}

// NewURIState fetches uri via fetch (DefaultFetcher if nil) and returns a
// TransformState ready for ApplyTransform/AdoptTransform.
func NewURIState(registry *Registry, uri string, fetch Fetcher) (*URIState, error) {
	if fetch == nil {
		fetch = DefaultFetcher
	}
	buf, err := fetch(uri)
	if err != nil {
		return nil, err
	}
	return &URIState{registry: registry, buf: buf}, nil
}

// NewTransformStateFactory adapts a Registry+Fetcher pair to
// xmlenc.Context.TransformStateFactory.
func (r *Registry) NewTransformStateFactory(fetch Fetcher) xmlenc.TransformStateFactory {
	return func(uri string) (xmlenc.TransformState, error) {
		return NewURIState(r, uri, fetch)
	}
}

func (s *URIState) ApplyTransform(id string) error {
	t, err := s.registry.New(id)
	if err != nil {
		return err
	}
	defer t.Close()
	t.SetDirection(false)

	out, err := runTransform(t, s.buf)
	if err != nil {
		return err
	}
	s.buf = out
	return nil
}

func (s *URIState) AdoptTransform(t xmlenc.Transform) error {
	s.adopted = append(s.adopted, t)
	return nil
}

func (s *URIState) ResultBinary() ([]byte, error) {
	data := s.buf
	for _, t := range s.adopted {
		out, err := runTransform(t, data)
		if err != nil {
			return nil, err
		}
		data = out
	}
	return data, nil
}

// runTransform drives one transform through a full write/flush/read-to-EOF
// cycle against an in-memory buffer — every use in this package is a
// one-shot, non-streaming application.
func runTransform(t xmlenc.Transform, in []byte) ([]byte, error) {
	if _, err := t.Write(in); err != nil {
		return nil, err
	}
	if err := t.Flush(); err != nil {
		return nil, err
	}

	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := t.Read(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
		out = append(out, buf[:n]...)
	}
}
