// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: persist/sqlite.go
// Summary: SQLite-backed sink storing layouts as hashed rows.
//
// Each row carries a sha1 of its value so a torn or hand-edited row is
// reported as corrupt instead of being handed to the decoder.

package persist

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS layouts (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    hash TEXT NOT NULL,
    updated_at INTEGER NOT NULL  -- UnixNano
);
`

// SQLiteSink stores values in a single table keyed by layout key.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink opens (or creates) the database at path.
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("persist: create directory: %w", err)
		}
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	if path == ":memory:" {
		dsn = path
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("persist: open database: %w", err)
	}
	// One connection keeps :memory: databases shared and writes serialized.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: connect to database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: create schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func valueHash(value []byte) string {
	sum := sha1.Sum(value)
	return hex.EncodeToString(sum[:])
}

func (s *SQLiteSink) Save(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO layouts (key, value, hash, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, hash = excluded.hash, updated_at = excluded.updated_at`,
		key, value, valueHash(value), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("persist: save %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteSink) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT value, hash FROM layouts WHERE key = ?`, key).Scan(&value, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persist: load %q: %w", key, err)
	}
	if valueHash(value) != hash {
		return nil, fmt.Errorf("%w: hash mismatch for %q", ErrCorrupt, key)
	}
	return value, nil
}

// Close releases the database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
