// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/transform"
)

func TestPipelineWriteFlushRead(t *testing.T) {
	p := xmlenc.NewPipeline()
	b64 := transform.NewBase64()
	b64.SetDirection(true)
	require.NoError(t, p.Append(b64))

	sink := transform.NewMemorySink()
	require.NoError(t, p.Append(sink))

	require.NoError(t, p.Write([]byte("hello")))
	require.NoError(t, p.Flush())

	out, err := p.ReadAll()
	require.NoError(t, err)
	require.Equal(t, "aGVsbG8=", string(out))
	require.NoError(t, p.Close())
}

func TestPipelinePrependOrdersHeadCorrectly(t *testing.T) {
	p := xmlenc.NewPipeline()
	sink := transform.NewMemorySink()
	require.NoError(t, p.Append(sink))

	b64 := transform.NewBase64()
	b64.SetDirection(false)
	require.NoError(t, p.Prepend(b64))

	require.Equal(t, b64, p.Transforms()[0])
	require.Equal(t, sink, p.Transforms()[1])

	require.NoError(t, p.Write([]byte("aGVsbG8=")))
	require.NoError(t, p.Flush())
	out, err := p.ReadAll()
	require.NoError(t, err)
	require.Equal(t, "hello", string(out))
}

// A transform without CapBinary is rejected by both Append and Prepend.
type noCapTransform struct{ transform.MemorySink }

func (noCapTransform) Capabilities() xmlenc.Capability { return 0 }

func TestPipelineRejectsNonBinaryTransform(t *testing.T) {
	p := xmlenc.NewPipeline()
	err := p.Append(&noCapTransform{})
	require.Error(t, err)
	xerr, ok := err.(*xmlenc.Error)
	require.True(t, ok)
	require.Equal(t, xmlenc.KindInvalidTransform, xerr.Kind)

	err = p.Prepend(&noCapTransform{})
	require.Error(t, err)
}
