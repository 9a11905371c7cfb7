// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

// Package httpapi holds the small pieces cmd/xmlencd's handlers share:
// an RFC 7807-flavored error body and the xmlenc.Error-to-status mapping,
// grounded on the teacher's frontend/api problem.Problem pattern.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/readium/xmlenc"
)

// ContentTypeJSON mirrors the teacher's api.ContentType_JSON constant.
const ContentTypeJSON = "application/json"

// Problem is a minimal problem+json body: a detail string plus the status
// code repeated in the body, the same shape frontend/api/publication.go's
// calls to problem.Error(w, r, problem.Problem{Detail: ...}, status) imply.
type Problem struct {
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

// WriteProblem writes p as a problem+json response with the given status.
func WriteProblem(w http.ResponseWriter, p Problem, status int) {
	p.Status = status
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}

// WriteError maps err to a status code and writes it as a Problem. An
// *xmlenc.Error's Kind picks the status; any other error is a 500.
func WriteError(w http.ResponseWriter, err error) {
	if xe, ok := err.(*xmlenc.Error); ok {
		WriteProblem(w, Problem{Title: string(xe.Kind), Detail: xe.Error()}, statusForKind(xe.Kind))
		return
	}
	WriteProblem(w, Problem{Detail: err.Error()}, http.StatusInternalServerError)
}

func statusForKind(kind xmlenc.Kind) int {
	switch kind {
	case xmlenc.KindInvalidData, xmlenc.KindInvalidNode, xmlenc.KindInvalidType,
		xmlenc.KindNodeAlreadyExists, xmlenc.KindInvalidTransform:
		return http.StatusBadRequest
	case xmlenc.KindNodeNotFound, xmlenc.KindKeyNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
