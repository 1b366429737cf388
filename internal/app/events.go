// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/jeranaias/bestfriend-tui/internal/model"

// =============================================================================
// EVENTS
// =============================================================================

// Event is an input to the state machine.
type Event interface {
	isEvent()
}

// KeySubmitted is sent when the user submits the setup form.
type KeySubmitted struct {
	Key string
}

// CredentialRestored is sent at startup when a stored key was found.
type CredentialRestored struct {
	Key string
}

// TextSubmitted is sent when the user sends a chat message.
type TextSubmitted struct {
	Text string
}

// ReplySucceeded carries the reply of the send task TaskID.
type ReplySucceeded struct {
	TaskID string
	Text   string
}

// ReplyFailed carries the error of the send task TaskID.
type ReplyFailed struct {
	TaskID string
	Err    error
}

// CancelRequested asks for the in-flight send to be abandoned.
type CancelRequested struct{}

func (KeySubmitted) isEvent()       {}
func (CredentialRestored) isEvent() {}
func (TextSubmitted) isEvent()      {}
func (ReplySucceeded) isEvent()     {}
func (ReplyFailed) isEvent()        {}
func (CancelRequested) isEvent()    {}

// =============================================================================
// EFFECTS
// =============================================================================

// Effect is a side effect requested by a transition.
type Effect interface {
	isEffect()
}

// InitializeClient binds the completion client to Key. When ForgetOnFailure
// is set a failed initialization also clears the stored credential.
type InitializeClient struct {
	Key             string
	ForgetOnFailure bool
}

// PersistCredential stores Key in the credential store.
type PersistCredential struct {
	Key string
}

// SeedWelcome appends the persona's greeting to an empty transcript.
type SeedWelcome struct{}

// AppendMessage appends a new message to the transcript.
type AppendMessage struct {
	Role    model.Role
	Content string
}

// StartSend starts a send task for the current transcript.
type StartSend struct {
	TaskID string
}

// CancelSend cancels the send task TaskID.
type CancelSend struct {
	TaskID string
}

// SetBanner replaces the chat error banner.
type SetBanner struct {
	Err error
}

// ClearBanner removes the chat error banner.
type ClearBanner struct{}

// SetFormError shows an error on the setup form.
type SetFormError struct {
	Err error
}

// ClearFormError removes the setup form error.
type ClearFormError struct{}

func (InitializeClient) isEffect()  {}
func (PersistCredential) isEffect() {}
func (SeedWelcome) isEffect()       {}
func (AppendMessage) isEffect()     {}
func (StartSend) isEffect()         {}
func (CancelSend) isEffect()        {}
func (SetBanner) isEffect()         {}
func (ClearBanner) isEffect()       {}
func (SetFormError) isEffect()      {}
func (ClearFormError) isEffect()    {}
