// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package dom_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/readium/xmlenc/dom"
)

func TestParseDocumentIndexesIDs(t *testing.T) {
	doc, err := dom.ParseDocument(bytes.NewReader([]byte(
		`<root><item Id="a1"><child/></item></root>`)))
	require.NoError(t, err)

	item := doc.Root.Children[0]
	require.Equal(t, "item", item.Name.Local)
	found, ok := doc.LookupID("a1")
	require.True(t, ok)
	require.Same(t, item, found)
}

func TestDumpAndParseFragmentRoundTrip(t *testing.T) {
	doc, err := dom.ParseDocument(bytes.NewReader([]byte(`<root><a>1</a><b>2</b></root>`)))
	require.NoError(t, err)

	out, err := dom.Dump(doc.Root)
	require.NoError(t, err)

	reparsed, err := dom.ParseFragment(out)
	require.NoError(t, err)
	require.Len(t, reparsed, 1)
	require.Equal(t, "root", reparsed[0].Name.Local)
	require.Len(t, reparsed[0].Children, 2)
}

func TestDumpAllSerializesSiblingsInOrder(t *testing.T) {
	doc, err := dom.ParseDocument(bytes.NewReader([]byte(`<root><a>1</a><b>2</b></root>`)))
	require.NoError(t, err)

	out, err := dom.DumpAll(doc.Root.Children)
	require.NoError(t, err)

	nodes, err := dom.ParseFragment(out)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Equal(t, "a", nodes[0].Name.Local)
	require.Equal(t, "b", nodes[1].Name.Local)
}

func TestReplaceNodeSwapsPositionAndClearsParent(t *testing.T) {
	doc, err := dom.ParseDocument(bytes.NewReader([]byte(`<root><a/><b/><c/></root>`)))
	require.NoError(t, err)

	b := doc.Root.Children[1]
	replacement := dom.CreateElement("", "z")
	require.NoError(t, dom.ReplaceNode(b, replacement))

	require.Len(t, doc.Root.Children, 3)
	require.Equal(t, "z", doc.Root.Children[1].Name.Local)
	require.Nil(t, b.Parent)
}

func TestReplaceContentReplacesChildrenInPlace(t *testing.T) {
	doc, err := dom.ParseDocument(bytes.NewReader([]byte(`<root><a/></root>`)))
	require.NoError(t, err)

	x := dom.CreateElement("", "x")
	y := dom.CreateElement("", "y")
	dom.ReplaceContent(doc.Root, []*dom.Node{x, y})

	require.Len(t, doc.Root.Children, 2)
	require.Equal(t, "x", doc.Root.Children[0].Name.Local)
	require.Equal(t, "y", doc.Root.Children[1].Name.Local)
	require.Same(t, doc.Root, x.Parent)
}
