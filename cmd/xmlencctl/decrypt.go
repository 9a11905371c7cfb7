// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/dom"
	"github.com/readium/xmlenc/internal/engine"
)

var (
	decIn     string
	decOut    string
	decKeyHex string
)

func init() {
	decryptCmd.SilenceErrors = true
	decryptCmd.SilenceUsage = true
	rootCmd.AddCommand(decryptCmd)

	decryptCmd.Flags().StringVarP(&decIn, "in", "i", "", "EncryptedData input file")
	decryptCmd.Flags().StringVarP(&decOut, "out", "o", "", "recovered plaintext output file")
	decryptCmd.Flags().StringVarP(&decKeyHex, "key", "k", "", "content-encryption key, hex-encoded")

	_ = decryptCmd.MarkFlagRequired("in")
	_ = decryptCmd.MarkFlagRequired("out")
	_ = decryptCmd.MarkFlagRequired("key")
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt a standalone EncryptedData element back to its plaintext bytes",
	RunE:  runDecrypt,
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(decIn)
	if err != nil {
		return fmt.Errorf("reading %s: %w", decIn, err)
	}

	keyBytes, err := hex.DecodeString(decKeyHex)
	if err != nil {
		return fmt.Errorf("decoding --key as hex: %w", err)
	}

	doc, err := dom.ParseDocument(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", decIn, err)
	}

	ctx := engine.New(nil, nil, nil, nil)
	ctx.IgnoreType = true
	result, err := xmlenc.Decrypt(ctx, doc, doc.Root, &xmlenc.Key{Bytes: keyBytes})
	if err != nil {
		return fmt.Errorf("decrypting: %w", err)
	}

	if err := os.WriteFile(decOut, result.Buffer, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", decOut, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "decrypted %d bytes -> %s\n", len(result.Buffer), decOut)
	return nil
}
