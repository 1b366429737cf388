// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/bestfriend-tui/internal/apperr"
	"github.com/jeranaias/bestfriend-tui/internal/credential"
	"github.com/jeranaias/bestfriend-tui/internal/model"
)

// User-facing messages produced by the orchestration layer.
const (
	MsgNotInitialized = "OpenAI not initialized. Please set your API key."
	MsgSendFailed     = "Failed to send message"
	MsgPersistFailed  = "Failed to set API key"
)

// Env carries the facts a transition may depend on besides the state.
type Env struct {
	// ClientReady reports whether the completion client is initialized.
	ClientReady bool
	// NextTaskID is the ID to give a send task started by this step.
	NextTaskID string
}

// Step computes the state that follows s on ev and the effects to apply.
// It has no side effects. Events that do not apply to s leave it unchanged
// with no effects.
func Step(s State, ev Event, env Env) (State, []Effect) {
	switch s := s.(type) {
	case Unconfigured:
		return stepUnconfigured(s, ev)
	case Ready:
		return stepReady(s, ev, env)
	case AwaitingReply:
		return stepAwaiting(s, ev)
	default:
		return s, nil
	}
}

func stepUnconfigured(s Unconfigured, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case KeySubmitted:
		if err := credential.Validate(ev.Key); err != nil {
			return s, []Effect{SetFormError{Err: err}}
		}
		key := strings.TrimSpace(ev.Key)
		return Ready{}, []Effect{
			ClearFormError{},
			InitializeClient{Key: key},
			PersistCredential{Key: key},
			SeedWelcome{},
		}

	case CredentialRestored:
		return Ready{}, []Effect{
			InitializeClient{Key: ev.Key, ForgetOnFailure: true},
			SeedWelcome{},
		}
	}
	return s, nil
}

func stepReady(s Ready, ev Event, env Env) (State, []Effect) {
	ev2, ok := ev.(TextSubmitted)
	if !ok {
		return s, nil
	}

	text := NormalizeInput(ev2.Text)
	if text == "" {
		return s, nil
	}
	if !env.ClientReady {
		return s, []Effect{SetBanner{Err: apperr.Configuration(MsgNotInitialized, nil)}}
	}

	return AwaitingReply{TaskID: env.NextTaskID}, []Effect{
		ClearBanner{},
		AppendMessage{Role: model.RoleUser, Content: text},
		StartSend{TaskID: env.NextTaskID},
	}
}

func stepAwaiting(s AwaitingReply, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case ReplySucceeded:
		if ev.TaskID != s.TaskID {
			return s, nil
		}
		return Ready{}, []Effect{AppendMessage{Role: model.RoleAssistant, Content: ev.Text}}

	case ReplyFailed:
		if ev.TaskID != s.TaskID {
			return s, nil
		}
		return Ready{}, []Effect{SetBanner{Err: asDisplayable(ev.Err)}}

	case CancelRequested:
		return s, []Effect{CancelSend{TaskID: s.TaskID}}
	}
	return s, nil
}

// NormalizeInput NFC-normalizes and trims chat input.
func NormalizeInput(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}

// asDisplayable makes sure the banner error carries a user-facing message.
func asDisplayable(err error) error {
	if err == nil {
		return apperr.API(MsgSendFailed, nil)
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.API(MsgSendFailed, err)
}
