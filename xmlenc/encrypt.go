// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

import "github.com/readium/xmlenc/dom"

// EncryptMemory implements spec.md §4.5's memory entry point: plaintext is
// already in hand, so it is simply written into the pipeline head and
// flushed.
func EncryptMemory(ctx *Context, template *dom.Node, plaintext []byte, key *Key) (result *Result, err error) {
	result = newResult(true, template, key)
	st, err := buildState(ctx, template, true, result)
	if err != nil {
		return nil, err
	}
	defer st.pipeline.Close()

	if err := st.pipeline.Write(plaintext); err != nil {
		return nil, err
	}
	if err := st.pipeline.Flush(); err != nil {
		return nil, err
	}
	buf, err := st.pipeline.ReadAll()
	if err != nil {
		return nil, err
	}
	if err := writeCipherData(st.cipherDataNode, buf); err != nil {
		return nil, err
	}

	result.Buffer = buf
	return result, nil
}

// EncryptURI implements spec.md §4.5's URI entry point: an InputUri
// transform is prepended and the pipeline is pulled to completion
// read-driven, since the head is now a source rather than something
// written to.
func EncryptURI(ctx *Context, template *dom.Node, uri string, key *Key) (result *Result, err error) {
	if ctx.NewURITransform == nil {
		return nil, newError(KindInvalidData, "", "context has no URI transform factory")
	}

	result = newResult(true, template, key)
	st, err := buildState(ctx, template, true, result)
	if err != nil {
		return nil, err
	}
	defer st.pipeline.Close()

	src, err := ctx.NewURITransform(uri)
	if err != nil {
		return nil, err
	}
	if err := st.pipeline.Prepend(src); err != nil {
		return nil, err
	}

	if err := st.pipeline.Pull(1024); err != nil {
		return nil, err
	}
	buf, err := st.pipeline.ReadAll()
	if err != nil {
		return nil, err
	}
	if err := writeCipherData(st.cipherDataNode, buf); err != nil {
		return nil, err
	}

	result.Buffer = buf
	return result, nil
}

// EncryptNode implements spec.md §4.5's XML-node entry point. src is
// serialized according to template's Type attribute (#Element or no Type
// dumps the whole node, #Content dumps each child in order, anything else
// is InvalidType), then — unless ctx.IgnoreType suppresses it — src is
// replaced in the document by template (#Element) or template becomes
// src's sole child (#Content). With no Type the document is left unchanged.
func EncryptNode(ctx *Context, template, src *dom.Node, key *Key) (result *Result, err error) {
	result = newResult(true, template, key)
	st, err := buildState(ctx, template, true, result)
	if err != nil {
		return nil, err
	}
	defer st.pipeline.Close()

	var dumped []byte
	switch result.Type {
	case "", TypeElement:
		dumped, err = dom.Dump(src)
	case TypeContent:
		dumped, err = dom.DumpAll(src.Children)
	default:
		err = newError(KindInvalidType, "", result.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := st.pipeline.Write(dumped); err != nil {
		return nil, err
	}
	if err := st.pipeline.Flush(); err != nil {
		return nil, err
	}
	buf, err := st.pipeline.ReadAll()
	if err != nil {
		return nil, err
	}
	if err := writeCipherData(st.cipherDataNode, buf); err != nil {
		return nil, err
	}
	result.Buffer = buf

	if !ctx.IgnoreType {
		switch result.Type {
		case TypeElement:
			if err := dom.ReplaceNode(src, template); err != nil {
				return nil, err
			}
			result.Replaced = true
		case TypeContent:
			dom.ReplaceContent(src, []*dom.Node{template})
			result.Replaced = true
		}
	}

	return result, nil
}
