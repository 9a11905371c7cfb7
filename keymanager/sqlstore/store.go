// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

// Package sqlstore is a database-backed xmlenc.KeyManager, prepared
// statement per operation, in the same style the teacher's transactions
// package uses for its event table. It runs against any database/sql driver
// the caller imports for side effect: github.com/mattn/go-sqlite3,
// github.com/go-sql-driver/mysql, or github.com/lib/pq.
package sqlstore

import (
	"database/sql"
	"errors"
	"time"

	"github.com/readium/xmlenc"
	"github.com/readium/xmlenc/dom"
)

// NotFound is returned by Get when no row matches the requested key id.
var NotFound = errors.New("sqlstore: key not found")

// Store is a pluggable xmlenc.KeyManager backed by a `keys` table.
type Store interface {
	xmlenc.KeyManager

	// Put inserts or replaces the key material registered under id.
	Put(id, keyType string, bytes []byte) error
	// Rotate is the callback keymanager.Scheduler drives: it replaces the
	// bytes behind an existing id, leaving the id and type untouched.
	Rotate(id string, bytes []byte) error
}

type store struct {
	db     *sql.DB
	get    *sql.Stmt
	put    *sql.Stmt
	rotate *sql.Stmt
}

// Open prepares the store's statements against db, creating the `keys`
// table if it does not already exist. driver names the database/sql driver
// registered for db ("sqlite3", "mysql", or "postgres"): the upsert in Put
// is not portable SQL across those three, so it is chosen per driver here.
func Open(db *sql.DB, driver string) (Store, error) {
	if _, err := db.Exec(tableDef); err != nil {
		return nil, err
	}

	get, err := db.Prepare(`SELECT key_type, bytes FROM keys WHERE id = ? LIMIT 1`)
	if err != nil {
		return nil, err
	}
	put, err := db.Prepare(upsertSQL(driver))
	if err != nil {
		return nil, err
	}
	rotate, err := db.Prepare(`UPDATE keys SET bytes = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return nil, err
	}

	return &store{db: db, get: get, put: put, rotate: rotate}, nil
}

// upsertSQL returns the insert-or-update statement for driver. MySQL has no
// ON CONFLICT clause (that's SQLite/PostgreSQL syntax — PostgreSQL and
// SQLite both parse it the same way here) and instead upserts via
// ON DUPLICATE KEY UPDATE.
func upsertSQL(driver string) string {
	if driver == "mysql" {
		return `INSERT INTO keys (id, key_type, bytes, updated_at) VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE key_type = VALUES(key_type), bytes = VALUES(bytes), updated_at = VALUES(updated_at)`
	}
	return `INSERT INTO keys (id, key_type, bytes, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET key_type = excluded.key_type, bytes = excluded.bytes, updated_at = excluded.updated_at`
}

// GetKey implements xmlenc.KeyManager. It ignores keyInfo: resolution is
// purely by the KeyRequest.ID the engine derived from the document.
func (s *store) GetKey(_ *dom.Node, req xmlenc.KeyRequest) (*xmlenc.Key, error) {
	if req.ID == "" {
		return nil, errors.New("sqlstore: key request has no id to look up")
	}

	var keyType string
	var bytes []byte
	row := s.get.QueryRow(req.ID)
	if err := row.Scan(&keyType, &bytes); err != nil {
		if err == sql.ErrNoRows {
			return nil, NotFound
		}
		return nil, err
	}
	if keyType == "" {
		keyType = req.Type
	}
	return &xmlenc.Key{Bytes: bytes, ID: req.ID, Type: keyType}, nil
}

// Put implements Store.
func (s *store) Put(id, keyType string, bytes []byte) error {
	_, err := s.put.Exec(id, keyType, bytes, time.Now().UTC())
	return err
}

// Rotate implements Store.
func (s *store) Rotate(id string, bytes []byte) error {
	res, err := s.rotate.Exec(bytes, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFound
	}
	return nil
}

const tableDef = `CREATE TABLE IF NOT EXISTS keys (
	id varchar(255) PRIMARY KEY,
	key_type varchar(64) NOT NULL,
	bytes blob NOT NULL,
	updated_at datetime NOT NULL
);`
