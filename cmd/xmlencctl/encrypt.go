// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/dom"
	"github.com/readium/xmlenc/internal/engine"
	"github.com/readium/xmlenc/transform"
)

var (
	encIn     string
	encOut    string
	encKeyHex string
	encMethod string
	encType   string
	encID     string
	encMime   string
)

func init() {
	encryptCmd.SilenceErrors = true
	encryptCmd.SilenceUsage = true
	rootCmd.AddCommand(encryptCmd)

	encryptCmd.Flags().StringVarP(&encIn, "in", "i", "", "plaintext input file")
	encryptCmd.Flags().StringVarP(&encOut, "out", "o", "", "EncryptedData output file")
	encryptCmd.Flags().StringVarP(&encKeyHex, "key", "k", "", "content-encryption key, hex-encoded")
	encryptCmd.Flags().StringVarP(&encMethod, "method", "m", transform.AlgorithmAES256CBC, "EncryptionMethod Algorithm URI")
	encryptCmd.Flags().StringVarP(&encType, "type", "t", "", "Type attribute (Element, Content, or empty for a detached CipherValue)")
	encryptCmd.Flags().StringVar(&encID, "id", "", "Id attribute for the EncryptedData element")
	encryptCmd.Flags().StringVar(&encMime, "mime-type", "", "MimeType attribute")

	_ = encryptCmd.MarkFlagRequired("in")
	_ = encryptCmd.MarkFlagRequired("out")
	_ = encryptCmd.MarkFlagRequired("key")
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a file's bytes into a standalone EncryptedData element",
	RunE:  runEncrypt,
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	plaintext, err := os.ReadFile(encIn)
	if err != nil {
		return fmt.Errorf("reading %s: %w", encIn, err)
	}

	keyBytes, err := hex.DecodeString(encKeyHex)
	if err != nil {
		return fmt.Errorf("decoding --key as hex: %w", err)
	}

	typeURI := ""
	switch encType {
	case "Element":
		typeURI = xmlenc.TypeElement
	case "Content":
		typeURI = xmlenc.TypeContent
	case "":
	default:
		return fmt.Errorf("--type must be Element, Content, or empty")
	}

	ctx := engine.New(nil, nil, nil, nil)
	ctx.DefaultMethod = encMethod

	template := xmlenc.Create(encID, typeURI, encMime, "")
	if _, err := xmlenc.AddEncryptionMethod(template, encMethod); err != nil {
		return fmt.Errorf("adding EncryptionMethod: %w", err)
	}
	result, err := xmlenc.EncryptMemory(ctx, template, plaintext, &xmlenc.Key{Bytes: keyBytes})
	if err != nil {
		return fmt.Errorf("encrypting: %w", err)
	}

	out, err := dom.Dump(result.EncryptedData)
	if err != nil {
		return fmt.Errorf("serializing EncryptedData: %w", err)
	}
	if err := os.WriteFile(encOut, out, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", encOut, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "encrypted %d bytes with %s -> %s\n", len(plaintext), result.Method, encOut)
	return nil
}
