// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package transform

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/readium/xmlenc"
)

// RSAOAEP is the RSA-OAEP key-transport cipher transform, used to wrap or
// unwrap a symmetric content-encryption key rather than bulk data. AddKey
// expects PEM-encoded key material: a public key to encrypt, a private key
// to decrypt.
type RSAOAEP struct {
	encrypt bool
	pub     *rsa.PublicKey
	priv    *rsa.PrivateKey
	in      []byte
	out     []byte
	offset  int
}

func newRSAOAEP() *RSAOAEP { return &RSAOAEP{} }

func (r *RSAOAEP) ID() string                      { return AlgorithmRSAOAEP }
func (r *RSAOAEP) Capabilities() xmlenc.Capability { return xmlenc.CapBinary }
func (r *RSAOAEP) SetDirection(encrypt bool)       { r.encrypt = encrypt }
func (r *RSAOAEP) EncKeyType() string              { return "rsa-public" }
func (r *RSAOAEP) DecKeyType() string              { return "rsa-private" }
func (r *RSAOAEP) KeyID() string                   { return "" }

func (r *RSAOAEP) AddKey(key []byte) error {
	block, _ := pem.Decode(key)
	if block == nil {
		return fmt.Errorf("transform: rsa-oaep key is not PEM-encoded")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return err
		}
		r.priv = priv
		r.pub = &priv.PublicKey
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return err
		}
		priv, ok := key.(*rsa.PrivateKey)
		if !ok {
			return fmt.Errorf("transform: PKCS#8 key is not RSA")
		}
		r.priv = priv
		r.pub = &priv.PublicKey
	case "RSA PUBLIC KEY", "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			rsaPub, err2 := x509.ParsePKCS1PublicKey(block.Bytes)
			if err2 != nil {
				return err
			}
			r.pub = rsaPub
			return nil
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return fmt.Errorf("transform: public key is not RSA")
		}
		r.pub = rsaPub
	default:
		return fmt.Errorf("transform: unsupported PEM block type %q", block.Type)
	}
	return nil
}

func (r *RSAOAEP) Write(p []byte) (int, error) {
	r.in = append(r.in, p...)
	return len(p), nil
}

func (r *RSAOAEP) Flush() error {
	if r.encrypt {
		if r.pub == nil {
			return fmt.Errorf("transform: rsa-oaep has no public key")
		}
		ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, r.pub, r.in, nil)
		if err != nil {
			return err
		}
		r.out = ciphertext
		return nil
	}

	if r.priv == nil {
		return fmt.Errorf("transform: rsa-oaep has no private key")
	}
	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, r.priv, r.in, nil)
	if err != nil {
		return err
	}
	r.out = plaintext
	return nil
}

func (r *RSAOAEP) Read(p []byte) (int, error) {
	if r.offset >= len(r.out) {
		return 0, nil
	}
	n := copy(p, r.out[r.offset:])
	r.offset += n
	return n, nil
}

func (r *RSAOAEP) Close() error {
	r.in, r.out = nil, nil
	r.offset = 0
	return nil
}
