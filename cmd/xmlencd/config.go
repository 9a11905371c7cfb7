// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is xmlencd's on-disk configuration, yaml.v2 like the teacher's own
// config files, rather than flags: a daemon's key-manager DSN and listen
// address are deployment facts, not per-invocation choices.
type Config struct {
	Address string `yaml:"address"`

	DefaultMethod string `yaml:"default_method"`

	KeyManager struct {
		// Driver selects the backend: "static" (keys listed inline, for
		// local/dev use) or one of "sqlite3"/"mysql"/"postgres" backed by
		// keymanager/sqlstore.
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		Keys   []struct {
			ID    string `yaml:"id"`
			KeyHex string `yaml:"key_hex"`
		} `yaml:"keys"`
	} `yaml:"key_manager"`

	Rotation *struct {
		KeyID    string `yaml:"key_id"`
		KeyBytes int    `yaml:"key_bytes"`
		Days     uint64 `yaml:"days"`
	} `yaml:"rotation"`

	Auth *struct {
		Realm    string `yaml:"realm"`
		Htpasswd string `yaml:"htpasswd_file"`
	} `yaml:"auth"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	// ChaosLatency, when set, injects artificial per-request latency via
	// jeffbmartinez/delay — a debug-only knob for exercising client
	// timeout handling, never enabled by default.
	ChaosLatency *struct {
		MinMillis int `yaml:"min_millis"`
		MaxMillis int `yaml:"max_millis"`
	} `yaml:"chaos_latency"`
}

// LoadConfig reads the yaml config at path and fills in defaults for the
// listen address, key manager driver and metrics path. It does not
// otherwise validate the values.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{
		Address: ":8080",
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.KeyManager.Driver == "" {
		cfg.KeyManager.Driver = "static"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	return cfg, nil
}
