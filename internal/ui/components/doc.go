// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable pieces of the bestfriend TUI: the
// chat header, the message renderer, the typing indicator and the error
// banner. Components are plain values or small Bubble Tea sub-models; they
// never talk to the state machine directly.
package components
