// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui hosts the root Bubble Tea model. It owns the application state
// machine and routes screen messages into it:
//
//	setup.SubmitMsg       -> app.KeySubmitted
//	chat.SendMsg          -> app.TextSubmitted (then waits on the send task)
//	chat.CancelMsg        -> app.CancelRequested
//	chat.DismissBannerMsg -> Machine.DismissBanner
//	ReplyMsg              -> app.ReplySucceeded / app.ReplyFailed
//
// After every dispatch the visible screen is re-synced from the machine, so
// the screens never hold state of their own beyond input and layout.
package ui
