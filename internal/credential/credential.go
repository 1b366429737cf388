// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credential persists the single API key used to talk to the
// completion API.
//
// The key is stored unencrypted under a fixed entry name in a per-user
// location, protected by filesystem permissions only. Absence of the entry
// means the application is unconfigured.
package credential

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jeranaias/bestfriend-tui/internal/apperr"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// EntryName is the fixed name of the persisted credential entry.
	EntryName = "openai_api_key"

	// KeyPrefix is the literal prefix every plausible key starts with.
	KeyPrefix = "sk-"

	// MsgMissingKey is shown when the submitted key is empty.
	MsgMissingKey = "Please enter your OpenAI API key"

	// MsgBadPrefix is shown when the submitted key has the wrong prefix.
	MsgBadPrefix = `OpenAI API keys start with "sk-"`
)

// ErrNotFound is returned by backends when no credential is stored.
var ErrNotFound = errors.New("credential not found")

// =============================================================================
// VALIDATION
// =============================================================================

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks that key is present and structurally plausible. It returns
// an apperr ValidationError and has no side effects.
func Validate(key string) error {
	key = strings.TrimSpace(key)
	v := getValidator()

	if err := v.Var(key, "required"); err != nil {
		return apperr.Validation(MsgMissingKey)
	}
	if err := v.Var(key, "startswith="+KeyPrefix); err != nil {
		return apperr.Validation(MsgBadPrefix)
	}
	return nil
}

// =============================================================================
// STORE
// =============================================================================

// Store reads and writes the credential through a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// NewStore returns a Store persisting through backend.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger.With("component", "credential"),
	}
}

// Set validates key and persists it. Nothing is written when validation fails.
func (s *Store) Set(key string) error {
	if err := Validate(key); err != nil {
		return err
	}

	key = strings.TrimSpace(key)
	if err := s.backend.Store([]byte(key)); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	s.logger.Info("credential stored", "location", s.backend.Location(), "length", len(key))
	return nil
}

// Get returns the stored key. ok is false when nothing is stored.
func (s *Store) Get() (key string, ok bool, err error) {
	raw, err := s.backend.Retrieve()
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read credential: %w", err)
	}

	key = strings.TrimSpace(string(raw))
	if key == "" {
		return "", false, nil
	}
	return key, true, nil
}

// Clear removes the stored key. Clearing an absent key is not an error.
func (s *Store) Clear() error {
	if err := s.backend.Delete(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	s.logger.Info("credential cleared", "location", s.backend.Location())
	return nil
}

// Exists reports whether a key is stored.
func (s *Store) Exists() bool {
	return s.backend.Exists()
}

// Location describes where the key is persisted.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Mask renders key for display, keeping the prefix and last four characters.
func Mask(key string) string {
	if len(key) <= len(KeyPrefix)+4 {
		return strings.Repeat("•", len(key))
	}
	hidden := len(key) - len(KeyPrefix) - 4
	return key[:len(KeyPrefix)] + strings.Repeat("•", hidden) + key[len(key)-4:]
}
