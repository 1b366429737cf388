// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/bestfriend-tui/internal/apperr"
	"github.com/jeranaias/bestfriend-tui/internal/model"
	"github.com/jeranaias/bestfriend-tui/internal/persona"
)

// CredentialStore persists the API key.
type CredentialStore interface {
	Set(key string) error
	Get() (key string, ok bool, err error)
	Clear() error
}

// CompletionClient produces assistant replies.
type CompletionClient interface {
	Sender
	Initialize(key string) error
	IsInitialized() bool
}

// Outcome reports what a dispatch did.
type Outcome struct {
	// State is the state after the dispatch.
	State State
	// Task is set when the dispatch started a send.
	Task *SendTask
	// Err is set when an effect failed and the state was rolled back.
	Err error
}

// Machine owns the application state and the transcript.
type Machine struct {
	state   State
	conv    *model.Conversation
	persona persona.Persona

	creds  CredentialStore
	client CompletionClient

	banner  error
	formErr error
	task    *SendTask

	ctx     context.Context
	timeout time.Duration
	newID   func() string
	logger  *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithContext sets the parent context of every send task.
func WithContext(ctx context.Context) Option {
	return func(m *Machine) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithRequestTimeout bounds every send. Zero means no bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithPersona sets the persona whose greeting seeds the transcript.
func WithPersona(p persona.Persona) Option {
	return func(m *Machine) { m.persona = p }
}

// WithIDGenerator replaces the task ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Machine) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMachine creates a machine in the Unconfigured state with an empty
// transcript.
func NewMachine(creds CredentialStore, client CompletionClient, opts ...Option) *Machine {
	m := &Machine{
		state:   Unconfigured{},
		conv:    model.NewConversation(),
		persona: persona.Default(),
		creds:   creds,
		client:  client,
		ctx:     context.Background(),
		newID:   uuid.NewString,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "app")
	return m
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.state.Phase() }

// Conversation returns the transcript.
func (m *Machine) Conversation() *model.Conversation { return m.conv }

// Persona returns the persona.
func (m *Machine) Persona() persona.Persona { return m.persona }

// Banner returns the chat error, or nil.
func (m *Machine) Banner() error { return m.banner }

// FormError returns the setup form error, or nil.
func (m *Machine) FormError() error { return m.formErr }

// Busy reports whether a reply is pending.
func (m *Machine) Busy() bool { return m.state.Phase() == PhaseAwaitingReply }

// Task returns the in-flight send task, or nil.
func (m *Machine) Task() *SendTask { return m.task }

// DismissBanner clears the chat error banner.
func (m *Machine) DismissBanner() { m.banner = nil }

// =============================================================================
// DISPATCH
// =============================================================================

// Restore looks up a stored credential and, when one exists, dispatches
// CredentialRestored. A missing credential leaves the machine Unconfigured.
func (m *Machine) Restore() Outcome {
	key, ok, err := m.creds.Get()
	if err != nil {
		m.logger.Warn("credential lookup failed", "error", err)
		return Outcome{State: m.state, Err: err}
	}
	if !ok {
		m.logger.Debug("no stored credential")
		return Outcome{State: m.state}
	}
	return m.Dispatch(CredentialRestored{Key: key})
}

// Dispatch runs ev through Step and applies the resulting effects. If an
// effect fails the state is left unchanged and the error is returned in the
// outcome.
func (m *Machine) Dispatch(ev Event) Outcome {
	env := Env{ClientReady: m.client.IsInitialized()}
	if _, ok := ev.(TextSubmitted); ok {
		env.NextTaskID = m.newID()
	}

	prev := m.state
	next, effects := Step(prev, ev, env)

	var out Outcome
	for _, eff := range effects {
		if err := m.apply(eff, &out); err != nil {
			m.logger.Warn("transition aborted",
				"event", eventName(ev),
				"state", prev.Phase().String(),
				"error", err,
			)
			out.State = m.state
			out.Err = err
			return out
		}
	}

	m.state = next
	if next.Phase() != PhaseAwaitingReply {
		m.task = nil
	}
	if prev.Phase() != next.Phase() {
		m.logger.Debug("state transition",
			"event", eventName(ev),
			"from", prev.Phase().String(),
			"to", next.Phase().String(),
		)
	}

	out.State = m.state
	return out
}

func (m *Machine) apply(eff Effect, out *Outcome) error {
	switch eff := eff.(type) {
	case InitializeClient:
		if err := m.client.Initialize(eff.Key); err != nil {
			if eff.ForgetOnFailure {
				if clearErr := m.creds.Clear(); clearErr != nil {
					m.logger.Warn("failed to clear stored credential", "error", clearErr)
				}
				return err
			}
			m.formErr = err
			return err
		}

	case PersistCredential:
		if err := m.creds.Set(eff.Key); err != nil {
			if apperr.KindName(err) == "internal" {
				err = apperr.Configuration(MsgPersistFailed, err)
			}
			m.formErr = err
			return err
		}

	case SeedWelcome:
		if m.conv.IsEmpty() {
			m.conv.Append(model.NewWelcomeMessage(m.persona))
		}

	case AppendMessage:
		m.conv.Append(model.NewMessage(eff.Role, eff.Content))

	case StartSend:
		m.task = startSend(m.ctx, eff.TaskID, m.timeout, m.client, m.conv.History())
		out.Task = m.task
		m.logger.Debug("send started", "task", eff.TaskID, "turns", m.conv.Len())

	case CancelSend:
		if m.task != nil && m.task.ID() == eff.TaskID {
			m.task.Cancel()
			m.logger.Debug("send cancelled", "task", eff.TaskID)
		}

	case SetBanner:
		m.banner = eff.Err

	case ClearBanner:
		m.banner = nil

	case SetFormError:
		m.formErr = eff.Err

	case ClearFormError:
		m.formErr = nil

	default:
		return fmt.Errorf("unknown effect %T", eff)
	}
	return nil
}

func eventName(ev Event) string {
	switch ev.(type) {
	case KeySubmitted:
		return "key_submitted"
	case CredentialRestored:
		return "credential_restored"
	case TextSubmitted:
		return "text_submitted"
	case ReplySucceeded:
		return "reply_succeeded"
	case ReplyFailed:
		return "reply_failed"
	case CancelRequested:
		return "cancel_requested"
	default:
		return fmt.Sprintf("%T", ev)
	}
}
