// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/bestfriend-tui/internal/apperr"
	"github.com/jeranaias/bestfriend-tui/internal/model"
)

func TestStep_UnconfiguredKeySubmitted(t *testing.T) {
	next, effects := Step(Unconfigured{}, KeySubmitted{Key: "  sk-test123  "}, Env{})

	assert.Equal(t, Ready{}, next)
	assert.Equal(t, []Effect{
		ClearFormError{},
		InitializeClient{Key: "sk-test123"},
		PersistCredential{Key: "sk-test123"},
		SeedWelcome{},
	}, effects)
}

func TestStep_UnconfiguredInvalidKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"wrong prefix", "pk-live-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effects := Step(Unconfigured{}, KeySubmitted{Key: tt.key}, Env{})

			assert.Equal(t, Unconfigured{}, next)
			require.Len(t, effects, 1)
			formErr, ok := effects[0].(SetFormError)
			require.True(t, ok)
			assert.True(t, apperr.IsValidation(formErr.Err))
		})
	}
}

func TestStep_CredentialRestored(t *testing.T) {
	next, effects := Step(Unconfigured{}, CredentialRestored{Key: "sk-stored"}, Env{})

	assert.Equal(t, Ready{}, next)
	assert.Equal(t, []Effect{
		InitializeClient{Key: "sk-stored", ForgetOnFailure: true},
		SeedWelcome{},
	}, effects)
}

func TestStep_UnconfiguredIgnoresChatEvents(t *testing.T) {
	events := []Event{
		TextSubmitted{Text: "hello"},
		ReplySucceeded{TaskID: "t1", Text: "hi"},
		ReplyFailed{TaskID: "t1", Err: errors.New("boom")},
		CancelRequested{},
	}
	for _, ev := range events {
		next, effects := Step(Unconfigured{}, ev, Env{ClientReady: true, NextTaskID: "t1"})
		assert.Equal(t, Unconfigured{}, next, "%T", ev)
		assert.Empty(t, effects, "%T", ev)
	}
}

func TestStep_ReadyTextSubmitted(t *testing.T) {
	next, effects := Step(Ready{}, TextSubmitted{Text: " hello \n"}, Env{ClientReady: true, NextTaskID: "t1"})

	assert.Equal(t, AwaitingReply{TaskID: "t1"}, next)
	assert.Equal(t, []Effect{
		ClearBanner{},
		AppendMessage{Role: model.RoleUser, Content: "hello"},
		StartSend{TaskID: "t1"},
	}, effects)
}

func TestStep_ReadyEmptyTextIsNoop(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		next, effects := Step(Ready{}, TextSubmitted{Text: text}, Env{ClientReady: true, NextTaskID: "t1"})
		assert.Equal(t, Ready{}, next)
		assert.Empty(t, effects)
	}
}

func TestStep_ReadyClientNotInitialized(t *testing.T) {
	next, effects := Step(Ready{}, TextSubmitted{Text: "hello"}, Env{ClientReady: false, NextTaskID: "t1"})

	assert.Equal(t, Ready{}, next)
	require.Len(t, effects, 1)
	banner, ok := effects[0].(SetBanner)
	require.True(t, ok)
	assert.True(t, apperr.IsConfiguration(banner.Err))
	assert.Equal(t, MsgNotInitialized, banner.Err.Error())
}

func TestStep_AwaitingReply(t *testing.T) {
	waiting := AwaitingReply{TaskID: "t1"}

	t.Run("success", func(t *testing.T) {
		next, effects := Step(waiting, ReplySucceeded{TaskID: "t1", Text: "hi there"}, Env{})
		assert.Equal(t, Ready{}, next)
		assert.Equal(t, []Effect{AppendMessage{Role: model.RoleAssistant, Content: "hi there"}}, effects)
	})

	t.Run("failure keeps api error", func(t *testing.T) {
		cause := apperr.API("Failed to get response from AI. Please check your API key and try again.", nil)
		next, effects := Step(waiting, ReplyFailed{TaskID: "t1", Err: cause}, Env{})
		assert.Equal(t, Ready{}, next)
		assert.Equal(t, []Effect{SetBanner{Err: cause}}, effects)
	})

	t.Run("failure wraps unknown error", func(t *testing.T) {
		next, effects := Step(waiting, ReplyFailed{TaskID: "t1", Err: errors.New("socket closed")}, Env{})
		assert.Equal(t, Ready{}, next)
		require.Len(t, effects, 1)
		banner := effects[0].(SetBanner)
		assert.True(t, apperr.IsAPI(banner.Err))
		assert.Equal(t, MsgSendFailed, banner.Err.Error())
	})

	t.Run("stale reply ignored", func(t *testing.T) {
		next, effects := Step(waiting, ReplySucceeded{TaskID: "t0", Text: "late"}, Env{})
		assert.Equal(t, waiting, next)
		assert.Empty(t, effects)

		next, effects = Step(waiting, ReplyFailed{TaskID: "t0", Err: errors.New("late")}, Env{})
		assert.Equal(t, waiting, next)
		assert.Empty(t, effects)
	})

	t.Run("text ignored while waiting", func(t *testing.T) {
		next, effects := Step(waiting, TextSubmitted{Text: "again"}, Env{ClientReady: true, NextTaskID: "t2"})
		assert.Equal(t, waiting, next)
		assert.Empty(t, effects)
	})

	t.Run("cancel", func(t *testing.T) {
		next, effects := Step(waiting, CancelRequested{}, Env{})
		assert.Equal(t, waiting, next)
		assert.Equal(t, []Effect{CancelSend{TaskID: "t1"}}, effects)
	})
}

func TestNormalizeInput(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune.
	assert.Equal(t, "caf\u00e9", NormalizeInput("  cafe\u0301 "))
	assert.Equal(t, "", NormalizeInput(" \t "))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "Unconfigured", Unconfigured{}.Phase().String())
	assert.Equal(t, "Ready", Ready{}.Phase().String())
	assert.Equal(t, "AwaitingReply", AwaitingReply{}.Phase().String())
	assert.Equal(t, "Unknown", Phase(42).String())
}
