// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

// Command xmlencd serves the xmlenc engine over HTTP, the daemon
// counterpart to cmd/xmlencctl's one-shot CLI, wired the way the teacher
// pairs frontend/ command-facing code with its library packages.
package main

import (
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/internal/engine"
	"github.com/readium/xmlenc/keymanager"
	"github.com/readium/xmlenc/keymanager/sqlstore"
)

func main() {
	configPath := flag.String("config", "xmlencd.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("xmlencd: %v", err)
	}

	km, rotationStore, err := buildKeyManager(cfg)
	if err != nil {
		log.Fatalf("xmlencd: %v", err)
	}

	ctx := engine.New(km, keymanager.KeyNameWriter{}, nil, nil)
	ctx.DefaultMethod = cfg.DefaultMethod

	if cfg.Rotation != nil {
		if rotationStore == nil {
			log.Fatalf("xmlencd: rotation configured but key_manager.driver is %q, not a sqlstore backend", cfg.KeyManager.Driver)
		}
		sched := keymanager.NewScheduler(rotationStore, cfg.Rotation.KeyBytes)
		sched.EveryDays(cfg.Rotation.Days, cfg.Rotation.KeyID, func(id string, err error) {
			log.Printf("xmlencd: rotating key %q: %v", id, err)
		})
		sched.Start()
	}

	handler := newRouter(cfg, ctx)

	fmt.Fprintf(os.Stderr, "xmlencd: listening on %s\n", cfg.Address)
	if err := http.ListenAndServe(cfg.Address, handler); err != nil {
		log.Fatalf("xmlencd: %v", err)
	}
}

// buildKeyManager selects a KeyManager backend from cfg.KeyManager.Driver.
// It also returns the sqlstore.Store (nil for "static") so rotation, which
// only makes sense against a persistent backend, can be wired to it.
func buildKeyManager(cfg *Config) (xmlenc.KeyManager, sqlstore.Store, error) {
	switch cfg.KeyManager.Driver {
	case "static":
		km := keymanager.NewStatic()
		for _, k := range cfg.KeyManager.Keys {
			b, err := hex.DecodeString(k.KeyHex)
			if err != nil {
				return nil, nil, fmt.Errorf("key_manager.keys[%s]: invalid key_hex: %w", k.ID, err)
			}
			km.Add(k.ID, b)
		}
		return km, nil, nil

	case "sqlite3", "mysql", "postgres":
		db, err := sql.Open(cfg.KeyManager.Driver, cfg.KeyManager.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s key manager database: %w", cfg.KeyManager.Driver, err)
		}
		store, err := sqlstore.Open(db, cfg.KeyManager.Driver)
		if err != nil {
			return nil, nil, fmt.Errorf("preparing key manager schema: %w", err)
		}
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown key_manager.driver %q", cfg.KeyManager.Driver)
	}
}
