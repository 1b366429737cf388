// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credential

import (
	"fmt"
	"path/filepath"
	"sync"
)

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is a persistent slot holding one credential.
type Backend interface {
	// Store replaces the stored credential.
	Store(key []byte) error
	// Retrieve returns the stored credential or ErrNotFound.
	Retrieve() ([]byte, error)
	// Delete removes the credential. Deleting nothing is not an error.
	Delete() error
	// Exists reports whether a credential is stored.
	Exists() bool
	// Location describes where the credential lives, for display.
	Location() string
	// Close releases any resources held by the backend.
	Close() error
}

// Kind selects a backend implementation.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

const (
	// DefaultDBName is the sqlite database file name inside the state directory.
	DefaultDBName = "state.db"
)

// Open returns the backend of the given kind. When path is empty the backend
// is placed in dir under its default file name.
func Open(kind Kind, dir, path string) (Backend, error) {
	switch kind {
	case KindFile, "":
		if path == "" {
			path = filepath.Join(dir, EntryName)
		}
		return NewFileBackend(path), nil
	case KindSQLite:
		if path == "" {
			path = filepath.Join(dir, DefaultDBName)
		}
		return OpenSQLiteBackend(path)
	default:
		return nil, fmt.Errorf("unknown credential backend %q", kind)
	}
}

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// MemoryBackend keeps the credential in memory. It does not survive restarts
// and exists for tests and ephemeral sessions.
type MemoryBackend struct {
	mu  sync.Mutex
	key []byte
	set bool
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Store(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = append([]byte(nil), key...)
	m.set = true
	return nil
}

func (m *MemoryBackend) Retrieve() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.key...), nil
}

func (m *MemoryBackend) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = nil
	m.set = false
	return nil
}

func (m *MemoryBackend) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set
}

func (m *MemoryBackend) Location() string { return "memory" }

func (m *MemoryBackend) Close() error { return nil }
