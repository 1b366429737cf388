// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat screen of the TUI.
//
// The screen renders a Snapshot of the application state pushed to it by the
// root model: the transcript, the error banner and whether a reply is
// pending. User intent leaves the screen as messages (SendMsg, CancelMsg,
// DismissBannerMsg) that the root model turns into state machine events.
//
// # Layout
//
//	+------------------------------+
//	| [A] Alex                     |  header
//	|     Your AI Best Friend      |
//	+------------------------------+
//	| transcript (viewport)        |
//	| typing indicator             |
//	| error banner                 |
//	+------------------------------+
//	| > input                      |
//	| shortcuts        N messages  |  footer
//	+------------------------------+
package chat
