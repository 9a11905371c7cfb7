// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

import "fmt"

// Kind is the closed set of failure kinds the engine reports, named to be
// collaborator-agnostic (no cipher/DOM library type names leak here).
type Kind string

const (
	KindMalloc            Kind = "malloc"
	KindXMLFailure        Kind = "xml_failure"
	KindInvalidNode       Kind = "invalid_node"
	KindNodeNotFound      Kind = "node_not_found"
	KindNodeAlreadyExists Kind = "node_already_present"
	KindInvalidData       Kind = "invalid_data"
	KindInvalidType       Kind = "invalid_type"
	KindInvalidTransform  Kind = "invalid_transform"
	KindKeyNotFound       Kind = "key_not_found"
	KindTransformFailure  Kind = "transform_failure"
)

// Error is the engine's single error type. Node carries the offending
// element name: always for InvalidNode/NodeNotFound/NodeAlreadyExists, and
// for other kinds where a single element is at fault (e.g. a
// CipherReference with no URI); it is empty otherwise.
type Error struct {
	Kind   Kind
	Node   string
	Detail string
}

func (e *Error) Error() string {
	desc := describe(e.Kind)
	if e.Node != "" {
		return fmt.Sprintf("xmlenc: %s: %s (%s)", desc, e.Node, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("xmlenc: %s: %s", desc, e.Detail)
	}
	return fmt.Sprintf("xmlenc: %s", desc)
}

func newError(kind Kind, node, detail string) *Error {
	err := &Error{Kind: kind, Node: node, Detail: detail}
	reportError(err)
	return err
}

// ErrorSink receives every Error the engine constructs, at the point it is
// constructed (spec.md §7: errors are reported via an error-sink function
// carrying caller location + kind + detail). The default sink is a no-op;
// callers that want XMLSEC_ERRORS_HERE-style side-channel reporting (for
// structured logging, i18n, metrics) install their own via SetErrorSink.
type ErrorSink func(*Error)

var errorSink ErrorSink = func(*Error) {}

// SetErrorSink installs the process-wide error reporting hook. Passing nil
// restores the no-op default.
func SetErrorSink(sink ErrorSink) {
	if sink == nil {
		sink = func(*Error) {}
	}
	errorSink = sink
}

func reportError(err *Error) {
	logError(err)
	errorSink(err)
}
