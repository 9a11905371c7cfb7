// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

import "github.com/readium/xmlenc/dom"

// state is the per-call engine state spec.md's glossary calls "State": the
// pipeline built while reading the grammar, plus a reference to the
// CipherData node the ciphertext is read from or written into.
type state struct {
	pipeline       *Pipeline
	cipherDataNode *dom.Node
	keyInfoNode    *dom.Node
}

// buildState implements spec.md §4.2: it walks EncryptedData's fixed child
// sequence, resolves the method and key, and leaves a pipeline positioned
// at either "ready to receive plaintext and produce base64 ciphertext"
// (encrypt) or "ready to receive the method transform only, decode/sink
// appended by the caller" (decrypt — see decrypt.go, which appends
// differently depending on CipherValue vs CipherReference).
//
// result must already have any caller-supplied Key attached; buildState
// only resolves a key when result.Key is nil.
func buildState(ctx *Context, root *dom.Node, encrypt bool, result *Result) (*state, error) {
	pipeline := NewPipeline()
	cur := root.FirstElementChild()

	methodID := ""
	if cur != nil && cur.Is(NamespaceEnc, elEncryptionMethod) {
		id, ok := cur.Attribute("Algorithm")
		if !ok || id == "" {
			return nil, newError(KindInvalidData, "", "EncryptionMethod has no Algorithm")
		}
		methodID = id
		cur = cur.NextElementSibling()
	} else if ctx.DefaultMethod != "" {
		methodID = ctx.DefaultMethod
	} else {
		return nil, newError(KindInvalidData, "", "encryption method not specified")
	}

	if ctx.NewTransform == nil {
		return nil, newError(KindInvalidData, "", "context has no transform factory")
	}
	methodTransform, err := ctx.NewTransform(methodID)
	if err != nil {
		return nil, err
	}
	methodTransform.SetDirection(encrypt)
	if err := pipeline.Append(methodTransform); err != nil {
		pipeline.Close()
		return nil, err
	}
	result.Method = methodID

	var keyInfoNode *dom.Node
	if cur != nil && cur.Is(NamespaceDSig, elKeyInfo) {
		keyInfoNode = cur
		cur = cur.NextElementSibling()
	}

	if err := resolveKey(ctx, encrypt, methodTransform, keyInfoNode, result); err != nil {
		pipeline.Close()
		return nil, err
	}

	if cur == nil || !cur.Is(NamespaceEnc, elCipherData) {
		pipeline.Close()
		return nil, newError(KindInvalidNode, elCipherData, "")
	}
	cipherDataNode := cur
	cur = cur.NextElementSibling()

	// EncryptionProperties, if present, is skipped silently (spec.md §4.2
	// step 7); nothing legal may follow it.

	st := &state{pipeline: pipeline, cipherDataNode: cipherDataNode, keyInfoNode: keyInfoNode}

	if encrypt {
		b64, err := ctx.NewTransform(TransformIDBase64)
		if err != nil {
			pipeline.Close()
			return nil, err
		}
		b64.SetDirection(true)
		if err := pipeline.Append(b64); err != nil {
			pipeline.Close()
			return nil, err
		}

		sink, err := ctx.NewTransform(TransformIDMemorySink)
		if err != nil {
			pipeline.Close()
			return nil, err
		}
		if err := pipeline.Append(sink); err != nil {
			pipeline.Close()
			return nil, err
		}
	}

	logPipelineBuilt(root.Name.Local, encrypt, pipeline.Len())
	return st, nil
}

func resolveKey(ctx *Context, encrypt bool, method Transform, keyInfoNode *dom.Node, result *Result) error {
	if result.Key != nil {
		logKeyResolved(result.Key.Origin, result.Key.Type)
		return method.AddKey(result.Key.Bytes)
	}
	if ctx.KeyManager == nil {
		return newError(KindKeyNotFound, "", "no key manager configured")
	}

	req := KeyRequest{ID: method.KeyID()}
	if encrypt {
		req.Usage = KeyUsageEncrypt
		req.Type = method.EncKeyType()
	} else {
		req.Usage = KeyUsageDecrypt
		req.Type = method.DecKeyType()
	}

	key, err := ctx.KeyManager.GetKey(keyInfoNode, req)
	if err != nil {
		return err
	}
	if key == nil {
		return newError(KindKeyNotFound, "", "")
	}
	key.Origin = KeyOriginKeyManager
	result.Key = key
	logKeyResolved(key.Origin, key.Type)

	if err := method.AddKey(key.Bytes); err != nil {
		return err
	}

	if encrypt && keyInfoNode != nil && ctx.KeyInfoWriter != nil {
		if err := ctx.KeyInfoWriter.Write(keyInfoNode, req, key); err != nil {
			return err
		}
	}
	return nil
}

// writeCipherData implements spec.md §4.2's CipherData writer: it embeds
// already-encoded ciphertext bytes b into cipherDataNode, creating
// CipherValue if the element has no child yet, overwriting it if one
// exists, and doing nothing if a CipherReference exists (the ciphertext
// lives at the referenced URI instead).
func writeCipherData(cipherDataNode *dom.Node, b []byte) error {
	child := cipherDataNode.FirstElementChild()
	if child == nil {
		cv := dom.CreateElement(NamespaceEnc, elCipherValue)
		cv.Text = wrapCipherValueText(b)
		dom.AppendChild(cipherDataNode, cv)
		return nil
	}
	switch {
	case child.Is(NamespaceEnc, elCipherValue):
		child.Text = wrapCipherValueText(b)
		return nil
	case child.Is(NamespaceEnc, elCipherReference):
		return nil
	default:
		return newError(KindInvalidNode, child.Name.Local, "")
	}
}

func wrapCipherValueText(b []byte) []byte {
	out := make([]byte, 0, len(b)+2)
	out = append(out, '\n')
	out = append(out, b...)
	out = append(out, '\n')
	return out
}
