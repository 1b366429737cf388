// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the orchestration layer between the user interface, the
// credential store and the completion client.
//
// The application is always in exactly one State:
//
//	Unconfigured --KeySubmitted--> Ready --TextSubmitted--> AwaitingReply
//	                                 ^                           |
//	                                 +--ReplySucceeded/Failed----+
//
// Step is a pure function from (state, event) to (next state, effects).
// Machine owns the state and the transcript and applies the effects against
// its injected dependencies. Front ends (the Bubble Tea TUI and the line
// REPL) only translate user input into events and render the machine.
//
// A Machine is not safe for concurrent use. Sends run on their own goroutine
// as a SendTask; the front end feeds the task's result back in as an event
// from the same goroutine that dispatches everything else.
package app
