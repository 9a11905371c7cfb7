// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package transform_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readium/xmlenc/transform"
)

func roundTrip(t *testing.T, id string, key, plaintext []byte) {
	t.Helper()
	registry := transform.NewRegistry()

	enc, err := registry.New(id)
	require.NoError(t, err)
	enc.SetDirection(true)
	require.NoError(t, enc.AddKey(key))
	_, err = enc.Write(plaintext)
	require.NoError(t, err)
	require.NoError(t, enc.Flush())

	var ciphertext []byte
	buf := make([]byte, 4096)
	for {
		n, err := enc.Read(buf)
		require.NoError(t, err)
		if n == 0 {
			break
		}
		ciphertext = append(ciphertext, buf[:n]...)
	}
	require.NoError(t, enc.Close())
	require.NotEqual(t, plaintext, ciphertext)

	dec, err := registry.New(id)
	require.NoError(t, err)
	dec.SetDirection(false)
	require.NoError(t, dec.AddKey(key))
	_, err = dec.Write(ciphertext)
	require.NoError(t, err)
	require.NoError(t, dec.Flush())

	var recovered []byte
	for {
		n, err := dec.Read(buf)
		require.NoError(t, err)
		if n == 0 {
			break
		}
		recovered = append(recovered, buf[:n]...)
	}
	require.Equal(t, plaintext, recovered)
}

func TestAESCBCRoundTrip(t *testing.T) {
	roundTrip(t, transform.AlgorithmAES128CBC, make([]byte, 16), []byte("hello world"))
	roundTrip(t, transform.AlgorithmAES256CBC, make([]byte, 32), bytes.Repeat([]byte("x"), 4096))
}

func TestChaCha20Poly1305RoundTrip(t *testing.T) {
	roundTrip(t, transform.AlgorithmChaCha20Poly1305, make([]byte, 32), []byte("hello world"))
}

func TestAESCBCWrongKeySizeRejected(t *testing.T) {
	registry := transform.NewRegistry()
	enc, err := registry.New(transform.AlgorithmAES128CBC)
	require.NoError(t, err)
	err = enc.AddKey(make([]byte, 8))
	require.Error(t, err)
}

func TestBase64RoundTrip(t *testing.T) {
	registry := transform.NewRegistry()
	b64, err := registry.New("http://www.w3.org/2000/09/xmldsig#base64")
	require.NoError(t, err)
	b64.SetDirection(true)
	_, err = b64.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, b64.Flush())

	buf := make([]byte, 64)
	n, err := b64.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "aGVsbG8=", string(buf[:n]))

	dec, err := registry.New("http://www.w3.org/2000/09/xmldsig#base64")
	require.NoError(t, err)
	dec.SetDirection(false)
	_, err = dec.Write([]byte("\n  aGVsbG8=  \n"))
	require.NoError(t, err)
	require.NoError(t, dec.Flush())
	n, err = dec.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestMemorySinkBuffersEverythingWritten(t *testing.T) {
	sink := transform.NewMemorySink()
	_, err := sink.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = sink.Write([]byte("def"))
	require.NoError(t, err)
	require.Equal(t, "abcdef", string(sink.Buffer()))

	buf := make([]byte, 3)
	n, err := sink.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "abc", string(buf[:n]))
	n, err = sink.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "def", string(buf[:n]))
	n, err = sink.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
