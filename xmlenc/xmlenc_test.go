// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/dom"
	"github.com/readium/xmlenc/internal/engine"
	"github.com/readium/xmlenc/keymanager"
	"github.com/readium/xmlenc/transform"
)

func newContext(t *testing.T) *xmlenc.Context {
	t.Helper()
	return engine.New(nil, keymanager.KeyNameWriter{}, nil, nil)
}

// S1: AES-128-CBC memory round trip.
func TestEncryptDecryptMemoryRoundTrip(t *testing.T) {
	ctx := newContext(t)
	key := &xmlenc.Key{Bytes: make([]byte, 16)}

	template := xmlenc.Create("", "", "", "")
	_, err := xmlenc.AddEncryptionMethod(template, transform.AlgorithmAES128CBC)
	require.NoError(t, err)

	plaintext := []byte("hello world")
	encResult, err := xmlenc.EncryptMemory(ctx, template, plaintext, key)
	require.NoError(t, err)
	require.NotEmpty(t, encResult.Buffer)

	cipherValue := findCipherValue(t, encResult.EncryptedData)
	require.NotEmpty(t, bytes.TrimSpace(cipherValue.Text))

	doc := &dom.Document{Root: encResult.EncryptedData}
	decResult, err := xmlenc.Decrypt(ctx, doc, encResult.EncryptedData, key)
	require.NoError(t, err)
	require.Equal(t, plaintext, decResult.Buffer)
}

// S2: CipherReference decrypt, no declared Transforms. data.bin holds the
// base64-encoded ciphertext (IV-prefixed) the same way S1's CipherValue
// does; decrypt must base64-decode the fetched bytes itself before
// running the cipher, since nothing declared in the reference does it.
func TestDecryptCipherReferenceNoTransforms(t *testing.T) {
	ctx := newContext(t)
	key := &xmlenc.Key{Bytes: make([]byte, 16)}

	memTemplate := xmlenc.Create("", "", "", "")
	_, err := xmlenc.AddEncryptionMethod(memTemplate, transform.AlgorithmAES128CBC)
	require.NoError(t, err)
	memResult, err := xmlenc.EncryptMemory(ctx, memTemplate, []byte("hello world"), key)
	require.NoError(t, err)
	cipherValue := findCipherValue(t, memResult.EncryptedData)

	dataPath := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(dataPath, bytes.TrimSpace(cipherValue.Text), 0o600))

	refTemplate := xmlenc.Create("", "", "", "")
	_, err = xmlenc.AddEncryptionMethod(refTemplate, transform.AlgorithmAES128CBC)
	require.NoError(t, err)
	_, err = xmlenc.AddCipherReference(refTemplate, dataPath)
	require.NoError(t, err)

	doc := &dom.Document{Root: refTemplate}
	decResult, err := xmlenc.Decrypt(ctx, doc, refTemplate, key)
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), decResult.Buffer)
}

// S3: element splice round trip.
func TestEncryptDecryptNodeElementSplice(t *testing.T) {
	doc := parseDoc(t, `<root><secret>42</secret></root>`)
	secret := doc.Root.Children[0]
	require.Equal(t, "secret", secret.Name.Local)

	ctx := newContext(t)
	key := &xmlenc.Key{Bytes: make([]byte, 16)}

	template := xmlenc.Create("", xmlenc.TypeElement, "", "")
	_, err := xmlenc.AddEncryptionMethod(template, transform.AlgorithmAES128CBC)
	require.NoError(t, err)

	encResult, err := xmlenc.EncryptNode(ctx, template, secret, key)
	require.NoError(t, err)
	require.True(t, encResult.Replaced)
	require.Len(t, doc.Root.Children, 1)
	require.Equal(t, "EncryptedData", doc.Root.Children[0].Name.Local)

	encryptedData := doc.Root.Children[0]
	decResult, err := xmlenc.Decrypt(ctx, doc, encryptedData, key)
	require.NoError(t, err)
	require.True(t, decResult.Replaced)

	require.Len(t, doc.Root.Children, 1)
	require.Equal(t, "secret", doc.Root.Children[0].Name.Local)
	require.Equal(t, "42", string(doc.Root.Children[0].Text))
}

// S4: content splice round trip.
func TestEncryptDecryptNodeContentSplice(t *testing.T) {
	doc := parseDoc(t, `<root><secret><a>1</a><b>2</b></secret></root>`)
	secret := doc.Root.Children[0]

	ctx := newContext(t)
	key := &xmlenc.Key{Bytes: make([]byte, 16)}

	template := xmlenc.Create("", xmlenc.TypeContent, "", "")
	_, err := xmlenc.AddEncryptionMethod(template, transform.AlgorithmAES128CBC)
	require.NoError(t, err)

	encResult, err := xmlenc.EncryptNode(ctx, template, secret, key)
	require.NoError(t, err)
	require.True(t, encResult.Replaced)
	require.Len(t, secret.Children, 1)
	require.Equal(t, "EncryptedData", secret.Children[0].Name.Local)

	encryptedData := secret.Children[0]
	decResult, err := xmlenc.Decrypt(ctx, doc, encryptedData, key)
	require.NoError(t, err)
	require.True(t, decResult.Replaced)

	require.Len(t, secret.Children, 2)
	require.Equal(t, "a", secret.Children[0].Name.Local)
	require.Equal(t, "b", secret.Children[1].Name.Local)
}

// S5: missing EncryptionMethod and no context default.
func TestEncryptMissingMethod(t *testing.T) {
	ctx := newContext(t)
	template := xmlenc.Create("", "", "", "")

	_, err := xmlenc.EncryptMemory(ctx, template, []byte("x"), &xmlenc.Key{Bytes: make([]byte, 16)})
	require.Error(t, err)

	xerr, ok := err.(*xmlenc.Error)
	require.True(t, ok)
	require.Equal(t, xmlenc.KindInvalidData, xerr.Kind)
}

// S6: wrong key fails decryption with TransformFailure, and the result is
// never populated.
func TestDecryptWrongKeyFails(t *testing.T) {
	ctx := newContext(t)
	rightKey := &xmlenc.Key{Bytes: make([]byte, 16)}
	wrongKey := &xmlenc.Key{Bytes: bytes.Repeat([]byte{0x01}, 16)}

	template := xmlenc.Create("", "", "", "")
	_, err := xmlenc.AddEncryptionMethod(template, transform.AlgorithmAES128CBC)
	require.NoError(t, err)

	encResult, err := xmlenc.EncryptMemory(ctx, template, []byte("hello world"), rightKey)
	require.NoError(t, err)

	doc := &dom.Document{Root: encResult.EncryptedData}
	result, err := xmlenc.Decrypt(ctx, doc, encResult.EncryptedData, wrongKey)
	require.Error(t, err)
	require.Nil(t, result)

	xerr, ok := err.(*xmlenc.Error)
	require.True(t, ok)
	require.Equal(t, xmlenc.KindTransformFailure, xerr.Kind)
}

// Sibling exclusivity: CipherValue and CipherReference never coexist.
func TestCipherDataSiblingExclusivity(t *testing.T) {
	enc := xmlenc.Create("", "", "", "")

	_, err := xmlenc.AddCipherValue(enc)
	require.NoError(t, err)

	_, err = xmlenc.AddCipherReference(enc, "data.bin")
	require.Error(t, err)

	xerr, ok := err.(*xmlenc.Error)
	require.True(t, ok)
	require.Equal(t, xmlenc.KindNodeAlreadyExists, xerr.Kind)
}

// Template idempotence: a second AddEncryptionMethod call fails without
// mutating the tree.
func TestAddEncryptionMethodIdempotentByFailure(t *testing.T) {
	enc := xmlenc.Create("", "", "", "")

	m1, err := xmlenc.AddEncryptionMethod(enc, transform.AlgorithmAES128CBC)
	require.NoError(t, err)

	_, err = xmlenc.AddEncryptionMethod(enc, transform.AlgorithmAES256CBC)
	require.Error(t, err)
	xerr, ok := err.(*xmlenc.Error)
	require.True(t, ok)
	require.Equal(t, xmlenc.KindNodeAlreadyExists, xerr.Kind)

	require.Equal(t, 1, countChildren(enc, "EncryptionMethod"))
	algorithm, _ := m1.Attribute("Algorithm")
	require.Equal(t, transform.AlgorithmAES128CBC, algorithm)
}

// Order invariance of key resolution: KeyInfo before EncryptionMethod is
// rejected as an out-of-order sibling.
func TestGrammarRejectsOutOfOrderKeyInfo(t *testing.T) {
	ctx := newContext(t)
	ctx.DefaultMethod = transform.AlgorithmAES128CBC

	enc := xmlenc.Create("", "", "", "")
	_, err := xmlenc.AddKeyInfo(enc)
	require.NoError(t, err)
	_, err = xmlenc.AddEncryptionMethod(enc, transform.AlgorithmAES128CBC)
	require.NoError(t, err)

	// Manually reorder so KeyInfo precedes EncryptionMethod, violating the
	// fixed grammar order the reader enforces with a single cursor. With a
	// context default method set, the reader accepts the (wrong) leading
	// KeyInfo node for its method-less path and only discovers the
	// violation once the cursor fails to land on CipherData.
	enc.Children[0], enc.Children[1] = enc.Children[1], enc.Children[0]

	_, err = xmlenc.EncryptMemory(ctx, enc, []byte("x"), &xmlenc.Key{Bytes: make([]byte, 16)})
	require.Error(t, err)
	xerr, ok := err.(*xmlenc.Error)
	require.True(t, ok)
	require.Equal(t, xmlenc.KindInvalidNode, xerr.Kind)
}

func findCipherValue(t *testing.T, encryptedData *dom.Node) *dom.Node {
	t.Helper()
	for _, c := range encryptedData.Children {
		if c.Name.Local == "CipherData" {
			for _, cc := range c.Children {
				if cc.Name.Local == "CipherValue" {
					return cc
				}
			}
		}
	}
	t.Fatal("no CipherValue found")
	return nil
}

func countChildren(n *dom.Node, local string) int {
	count := 0
	for _, c := range n.Children {
		if c.Name.Local == local {
			count++
		}
	}
	return count
}

func parseDoc(t *testing.T, xmlStr string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseDocument(bytes.NewReader([]byte(xmlStr)))
	require.NoError(t, err)
	return doc
}
