// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credential

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jeranaias/bestfriend-tui/internal/util"
)

// FileBackend stores the credential in a single file. The directory is
// created 0700 and the file written 0600.
type FileBackend struct {
	path string
}

// NewFileBackend returns a file backend rooted at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Store writes the key atomically with owner-only permissions.
func (f *FileBackend) Store(key []byte) error {
	if err := util.WriteFileAtomic(f.path, key, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// Retrieve reads the key file. Group or world permissions are tightened
// before reading.
func (f *FileBackend) Retrieve() ([]byte, error) {
	info, err := os.Stat(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat key file: %w", err)
	}

	if runtime.GOOS != "windows" {
		if mode := info.Mode().Perm(); mode&0077 != 0 {
			slog.Warn("key file had loose permissions, tightening",
				"path", f.path, "mode", fmt.Sprintf("%o", mode))
			if err := os.Chmod(f.path, 0600); err != nil {
				return nil, fmt.Errorf("failed to restrict key file permissions: %w", err)
			}
		}
	}

	key, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return key, nil
}

// Delete overwrites the key file with zeros and removes it.
func (f *FileBackend) Delete() error {
	if err := util.ScrubFile(f.path); err != nil {
		return fmt.Errorf("failed to delete key file: %w", err)
	}
	return nil
}

// Exists checks if the key file exists.
func (f *FileBackend) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Location returns the key file path.
func (f *FileBackend) Location() string {
	return filepath.Clean(f.path)
}

// Close is a no-op.
func (f *FileBackend) Close() error { return nil }
