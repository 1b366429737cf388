// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud wraps the OpenAI chat-completion API.
//
// A Client is constructed once at startup and handed to whoever needs it. It
// starts uninitialized; Initialize binds it to an API key. Every Send
// prepends the persona's system prompt and uses fixed sampling settings, so
// callers only supply the transcript.
//
// # Key Types
//
//   - Client: completion client with Initialize, IsInitialized and Send
//   - Option: functional options for base URL, HTTP client, rate limit, persona, logger
//
// # Usage
//
//	client := cloud.NewClient(cloud.WithLogger(logger))
//	if err := client.Initialize(apiKey); err != nil {
//	    // apperr ConfigurationError
//	}
//	reply, err := client.Send(ctx, conv.History())
//
// # Errors
//
// Send collapses every failure into an apperr ApiError with a generic
// remediation message. The wrapped cause carries one of the sentinel errors
// in this package (ErrAuthFailed, ErrRateLimited, ...) for logging.
//
// API keys are never logged; log lines carry a short SHA-256 fingerprint.
package cloud
