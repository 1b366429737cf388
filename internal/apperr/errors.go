// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apperr defines the error kinds surfaced to the user.
//
// Every user-visible failure belongs to exactly one kind:
//
//   - ErrValidation: a malformed or missing credential at setup time
//   - ErrConfiguration: an operation attempted before the client is initialized
//   - ErrAPI: any failure of the external completion call
//
// Callers test the kind with errors.Is and display Error() verbatim. The
// underlying cause, when present, is reachable through errors.Unwrap for
// logging but is never part of the displayed text.
package apperr

import "errors"

// =============================================================================
// SENTINEL KINDS
// =============================================================================

var (
	// ErrValidation marks input that failed validation.
	ErrValidation = errors.New("validation error")

	// ErrConfiguration marks an operation attempted without a usable configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrAPI marks a failed call to the completion API.
	ErrAPI = errors.New("api error")
)

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is a user-facing error of a specific kind.
type Error struct {
	// Kind is one of ErrValidation, ErrConfiguration or ErrAPI.
	Kind error

	// Message is the plain text shown to the user.
	Message string

	// Cause is the underlying error, if any. Never displayed.
	Cause error
}

// Error returns the user-facing message.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Validation returns a ValidationError with the given message.
func Validation(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Configuration returns a ConfigurationError with the given message and cause.
func Configuration(message string, cause error) *Error {
	return &Error{Kind: ErrConfiguration, Message: message, Cause: cause}
}

// API returns an ApiError with the given message and cause.
func API(message string, cause error) *Error {
	return &Error{Kind: ErrAPI, Message: message, Cause: cause}
}

// =============================================================================
// HELPERS
// =============================================================================

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool { return errors.Is(err, ErrConfiguration) }

// IsAPI reports whether err is an ApiError.
func IsAPI(err error) bool { return errors.Is(err, ErrAPI) }

// KindName returns a short name for the kind of err, for log attributes.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation"
	case IsConfiguration(err):
		return "configuration"
	case IsAPI(err):
		return "api"
	default:
		return "internal"
	}
}

// Message returns the text to display for err. Errors that are not of a known
// kind collapse to fallback so internal details never reach the screen.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return fallback
}
