// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package keymanager_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/keymanager"
)

func TestStaticKeyManagerResolvesByID(t *testing.T) {
	km := keymanager.NewStatic()
	km.Add("key-1", []byte("0123456789abcdef"))
	km.Add("key-2", []byte("fedcba9876543210"))

	key, err := km.GetKey(nil, xmlenc.KeyRequest{ID: "key-2", Type: "aes-128"})
	require.NoError(t, err)
	require.Equal(t, []byte("fedcba9876543210"), key.Bytes)
	require.Equal(t, "key-2", key.ID)
}

func TestStaticKeyManagerFallsBackToFirstAddedKey(t *testing.T) {
	km := keymanager.NewStatic()
	km.Add("only-key", []byte("0123456789abcdef"))

	key, err := km.GetKey(nil, xmlenc.KeyRequest{})
	require.NoError(t, err)
	require.Equal(t, "only-key", key.ID)
}

func TestStaticKeyManagerUnknownIDErrors(t *testing.T) {
	km := keymanager.NewStatic()
	_, err := km.GetKey(nil, xmlenc.KeyRequest{ID: "missing"})
	require.Error(t, err)
}

func TestKeyNameWriterWritesAndReplaces(t *testing.T) {
	enc := xmlenc.Create("", "", "", "")
	keyInfo, err := xmlenc.AddKeyInfo(enc)
	require.NoError(t, err)

	w := keymanager.KeyNameWriter{}
	require.NoError(t, w.Write(keyInfo, xmlenc.KeyRequest{}, &xmlenc.Key{ID: "key-1"}))
	require.Len(t, keyInfo.Children, 1)
	require.Equal(t, "key-1", string(keyInfo.Children[0].Text))

	require.NoError(t, w.Write(keyInfo, xmlenc.KeyRequest{}, &xmlenc.Key{ID: "key-2"}))
	require.Len(t, keyInfo.Children, 1)
	require.Equal(t, "key-2", string(keyInfo.Children[0].Text))
}
