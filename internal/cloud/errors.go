// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// Error variables for classifying failed requests.
var (
	// ErrNotInitialized indicates Send was called before Initialize.
	ErrNotInitialized = errors.New("client not initialized")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests or an exhausted quota.
	ErrRateLimited = errors.New("rate limited")

	// ErrServer indicates a 5xx response from the provider.
	ErrServer = errors.New("server error")

	// ErrRejected indicates any other non-2xx response.
	ErrRejected = errors.New("request rejected")

	// ErrNetwork indicates the request never produced an HTTP response.
	ErrNetwork = errors.New("network error")

	// ErrCancelled indicates the caller cancelled the request.
	ErrCancelled = errors.New("request cancelled")

	// ErrTimeout indicates the request's deadline passed.
	ErrTimeout = errors.New("request timed out")
)

// classify wraps err with the sentinel matching its cause. The original
// error stays reachable through errors.Is/As.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", statusSentinel(apiErr.HTTPStatusCode), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %w", statusSentinel(reqErr.HTTPStatusCode), err)
	}

	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

func statusSentinel(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrAuthFailed
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return ErrRejected
	}
}

// reason returns a short label for the log line of a failed request.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, ErrAuthFailed):
		return "auth"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrServer):
		return "server"
	case errors.Is(err, ErrRejected):
		return "rejected"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "network"
	}
}
