// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

// Package dom is a minimal, purpose-built XML tree adapter.
//
// The XML Encryption engine in package xmlenc needs exactly four DOM
// primitives: parse a document into an ID-indexed tree, dump a node back to
// bytes, parse a standalone fragment, and splice a node (or its children)
// for another node/fragment. Nothing else. A general-purpose DOM library
// is explicitly out of scope for the engine (see the xmlenc package
// documentation), so this package is the narrow stdlib adapter satisfying
// that contract rather than a general XML toolkit.
package dom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Node is a single element in a parsed tree. Character data found directly
// inside an element (not inside a child element) accumulates in Text; mixed
// content beyond that is not a concern of this package's callers.
type Node struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Node
	Text     []byte
	Parent   *Node
}

// Document is a parsed tree plus its Id attribute index.
type Document struct {
	Root *Node
	ids  map[string]*Node
}

// ParseDocument parses a complete XML document, building the tree and the
// Id index (spec.md calls this registering the element's "Id" attribute
// with the DOM's ID index prior to reference resolution).
func ParseDocument(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	root, err := parseTree(dec)
	if err != nil {
		return nil, err
	}

	doc := &Document{Root: root, ids: map[string]*Node{}}
	doc.indexIDs(root)
	return doc, nil
}

// ParseFragment parses a sequence of zero or more top-level elements, as
// produced by dumping an EncryptedData's decrypted #Content payload. The
// returned nodes have no Parent.
func ParseFragment(b []byte) ([]*Node, error) {
	wrapped := append(append([]byte("<xmlenc-fragment>"), b...), []byte("</xmlenc-fragment>")...)
	dec := xml.NewDecoder(bytes.NewReader(wrapped))
	dec.CharsetReader = charset.NewReaderLabel

	root, err := parseTree(dec)
	if err != nil {
		return nil, err
	}

	for _, c := range root.Children {
		c.Parent = nil
	}
	return root.Children, nil
}

func parseTree(dec *xml.Decoder) (*Node, error) {
	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name, Attr: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				n.Parent = parent
				parent.Children = append(parent.Children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("dom: unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text = append(stack[len(stack)-1].Text, t...)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("dom: empty document")
	}
	return root, nil
}

func (doc *Document) indexIDs(n *Node) {
	if id, ok := n.Attribute("Id"); ok && id != "" {
		doc.ids[id] = n
	}
	for _, c := range n.Children {
		doc.indexIDs(c)
	}
}

// RegisterID adds (or overwrites) an entry in the document's Id index.
func (doc *Document) RegisterID(id string, n *Node) {
	if doc.ids == nil {
		doc.ids = map[string]*Node{}
	}
	doc.ids[id] = n
}

// LookupID resolves an element previously registered under id.
func (doc *Document) LookupID(id string) (*Node, bool) {
	n, ok := doc.ids[id]
	return n, ok
}

// Attribute looks up an unprefixed attribute by local name, which is how
// every attribute the engine cares about (Id, Type, Algorithm, URI, ...) is
// declared in the XML Encryption/XML Signature schemas.
func (n *Node) Attribute(local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttribute creates or overwrites an unprefixed attribute.
func (n *Node) SetAttribute(local, value string) {
	for i, a := range n.Attr {
		if a.Name.Local == local {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

// Is reports whether the node is the given namespace-qualified element.
func (n *Node) Is(space, local string) bool {
	return n != nil && n.Name.Space == space && n.Name.Local == local
}

// FirstElementChild returns the first child element, or nil.
func (n *Node) FirstElementChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// NextElementSibling returns the element immediately following n among its
// parent's children, or nil if n is last or parentless.
func (n *Node) NextElementSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	for i, c := range n.Parent.Children {
		if c == n && i+1 < len(n.Parent.Children) {
			return n.Parent.Children[i+1]
		}
	}
	return nil
}

// CreateElement allocates a new, parentless element.
func CreateElement(space, local string) *Node {
	return &Node{Name: xml.Name{Space: space, Local: local}}
}

// AppendChild appends child as the last child of parent.
func AppendChild(parent, child *Node) {
	child.Parent = parent
	parent.Children = append(parent.Children, child)
}

// InsertChildAt inserts child at position idx among parent's children.
func InsertChildAt(parent *Node, idx int, child *Node) {
	child.Parent = parent
	if idx >= len(parent.Children) {
		parent.Children = append(parent.Children, child)
		return
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[idx+1:], parent.Children[idx:])
	parent.Children[idx] = child
}

// ReplaceNode replaces old within its parent's children with replacements,
// preserving position. old must have a parent.
func ReplaceNode(old *Node, replacements ...*Node) error {
	if old.Parent == nil {
		return fmt.Errorf("dom: cannot replace a node with no parent")
	}
	parent := old.Parent
	for i, c := range parent.Children {
		if c == old {
			next := make([]*Node, 0, len(parent.Children)-1+len(replacements))
			next = append(next, parent.Children[:i]...)
			for _, r := range replacements {
				r.Parent = parent
				next = append(next, r)
			}
			next = append(next, parent.Children[i+1:]...)
			parent.Children = next
			old.Parent = nil
			return nil
		}
	}
	return fmt.Errorf("dom: node not found among its parent's children")
}

// ReplaceContent replaces n's children in place with newChildren.
func ReplaceContent(n *Node, newChildren []*Node) {
	for _, c := range newChildren {
		c.Parent = n
	}
	n.Children = newChildren
}

// Dump serializes n and its subtree to a standalone, namespace-complete
// byte buffer (the xmlNodeDump/xmlBufferDump primitive spec.md names).
func Dump(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := dumpNode(enc, n, map[string]bool{}); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DumpAll serializes a sequence of sibling nodes (spec.md's #Content
// encrypt path: "iterate src.children, dump each in order").
func DumpAll(nodes []*Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	declared := map[string]bool{}
	for _, n := range nodes {
		if err := dumpNode(enc, n, declared); err != nil {
			return nil, err
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dumpNode(enc *xml.Encoder, n *Node, declaredAncestor map[string]bool) error {
	attrs := append([]xml.Attr(nil), n.Attr...)
	declared := declaredAncestor
	if n.Name.Space != "" && !declaredAncestor[n.Name.Space] {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: n.Name.Space})
		declared = map[string]bool{n.Name.Space: true}
		for k := range declaredAncestor {
			declared[k] = true
		}
	}

	start := xml.StartElement{Name: xml.Name{Local: n.Name.Local}, Attr: attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if len(n.Text) > 0 {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := dumpNode(enc, c, declared); err != nil {
			return err
		}
	}
	return enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: n.Name.Local}})
}
