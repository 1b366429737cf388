// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credential

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// SQLiteBackend stores the credential as one row of a key-value table.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLiteBackend opens (creating if needed) the database at path.
func OpenSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// The key is stored in plain text; keep the file owner-only.
	_ = os.Chmod(path, 0600)

	return &SQLiteBackend{db: db, path: path}, nil
}

// Store upserts the credential row.
func (s *SQLiteBackend) Store(key []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		EntryName, string(key), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store credential row: %w", err)
	}
	return nil
}

// Retrieve returns the credential row's value.
func (s *SQLiteBackend) Retrieve() ([]byte, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, EntryName).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential row: %w", err)
	}
	return []byte(value), nil
}

// Delete removes the credential row.
func (s *SQLiteBackend) Delete() error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, EntryName); err != nil {
		return fmt.Errorf("failed to delete credential row: %w", err)
	}
	return nil
}

// Exists reports whether the credential row is present.
func (s *SQLiteBackend) Exists() bool {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM kv WHERE key = ?`, EntryName).Scan(&one)
	return err == nil
}

// Location returns the database path and table.
func (s *SQLiteBackend) Location() string {
	return s.path + " (kv." + EntryName + ")"
}

// Close closes the database.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
