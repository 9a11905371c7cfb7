// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/dom"
	"github.com/readium/xmlenc/internal/httpapi"
)

// encryptRequest is the body handleEncrypt accepts: raw plaintext bytes,
// base64-encoded (an HTTP JSON body has no native byte-string type), plus
// the template attributes EncryptMemory needs.
type encryptRequest struct {
	PlaintextBase64 string `json:"plaintext_base64"`
	KeyHex          string `json:"key_hex"`
	Method          string `json:"method,omitempty"`
	Type            string `json:"type,omitempty"`
	ID              string `json:"id,omitempty"`
	MimeType        string `json:"mime_type,omitempty"`
}

type encryptResponse struct {
	EncryptedDataXML string `json:"encrypted_data_xml"`
	Method           string `json:"method"`
}

func handleEncrypt(ctx *xmlenc.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req encryptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.WriteProblem(w, httpapi.Problem{Detail: "invalid JSON body: " + err.Error()}, http.StatusBadRequest)
			return
		}

		plaintext, err := base64.StdEncoding.DecodeString(req.PlaintextBase64)
		if err != nil {
			httpapi.WriteProblem(w, httpapi.Problem{Detail: "invalid plaintext_base64"}, http.StatusBadRequest)
			return
		}
		keyBytes, err := hex.DecodeString(req.KeyHex)
		if err != nil {
			httpapi.WriteProblem(w, httpapi.Problem{Detail: "invalid key_hex"}, http.StatusBadRequest)
			return
		}

		template := xmlenc.Create(req.ID, req.Type, req.MimeType, "")
		if req.Method != "" {
			if _, err := xmlenc.AddEncryptionMethod(template, req.Method); err != nil {
				httpapi.WriteError(w, err)
				return
			}
		}

		result, err := xmlenc.EncryptMemory(ctx, template, plaintext, &xmlenc.Key{Bytes: keyBytes})
		if err != nil {
			encryptOperationsTotal.WithLabelValues("encrypt", req.Method, "error").Inc()
			httpapi.WriteError(w, err)
			return
		}
		encryptOperationsTotal.WithLabelValues("encrypt", result.Method, "ok").Inc()

		out, err := dom.Dump(result.EncryptedData)
		if err != nil {
			httpapi.WriteError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, encryptResponse{EncryptedDataXML: string(out), Method: result.Method})
	}
}

// decryptRequest carries the EncryptedData document and the key to try.
type decryptRequest struct {
	EncryptedDataXML string `json:"encrypted_data_xml"`
	KeyHex           string `json:"key_hex"`
}

type decryptResponse struct {
	PlaintextBase64 string `json:"plaintext_base64"`
	Replaced        bool   `json:"replaced"`
}

func handleDecrypt(ctx *xmlenc.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req decryptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.WriteProblem(w, httpapi.Problem{Detail: "invalid JSON body: " + err.Error()}, http.StatusBadRequest)
			return
		}

		keyBytes, err := hex.DecodeString(req.KeyHex)
		if err != nil {
			httpapi.WriteProblem(w, httpapi.Problem{Detail: "invalid key_hex"}, http.StatusBadRequest)
			return
		}

		doc, err := dom.ParseDocument(bytes.NewReader([]byte(req.EncryptedDataXML)))
		if err != nil {
			httpapi.WriteProblem(w, httpapi.Problem{Detail: "invalid encrypted_data_xml: " + err.Error()}, http.StatusBadRequest)
			return
		}

		result, err := xmlenc.Decrypt(ctx, doc, doc.Root, &xmlenc.Key{Bytes: keyBytes})
		if err != nil {
			encryptOperationsTotal.WithLabelValues("decrypt", "", "error").Inc()
			httpapi.WriteError(w, err)
			return
		}
		encryptOperationsTotal.WithLabelValues("decrypt", result.Method, "ok").Inc()

		writeJSON(w, http.StatusOK, decryptResponse{
			PlaintextBase64: base64.StdEncoding.EncodeToString(result.Buffer),
			Replaced:        result.Replaced,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", httpapi.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
