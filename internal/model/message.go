// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/bestfriend-tui/internal/persona"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the label shown next to a message from this role.
// The assistant is labelled with the persona's name.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return persona.Default().Name
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// WelcomeMessageID is the fixed ID of the seeded greeting.
const WelcomeMessageID = "welcome"

// Message is a single entry in the transcript. Messages are immutable once
// created; fields are exposed through accessors only.
type Message struct {
	id        string
	role      Role
	content   string
	timestamp time.Time
}

// NewMessage creates a message with a generated ID stamped with the current time.
func NewMessage(role Role, content string) *Message {
	return newMessageAt(uuid.NewString(), role, content, time.Now())
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) *Message {
	return NewMessage(RoleAssistant, content)
}

// NewWelcomeMessage creates the greeting seeded into a fresh conversation.
func NewWelcomeMessage(p persona.Persona) *Message {
	return newMessageAt(WelcomeMessageID, RoleAssistant, p.Greeting(), time.Now())
}

func newMessageAt(id string, role Role, content string, ts time.Time) *Message {
	return &Message{
		id:        id,
		role:      role,
		content:   content,
		timestamp: ts,
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ID returns the message's unique identifier.
func (m *Message) ID() string { return m.id }

// Role returns who sent the message.
func (m *Message) Role() Role { return m.role }

// Content returns the message text.
func (m *Message) Content() string { return m.content }

// Timestamp returns when the message was created.
func (m *Message) Timestamp() time.Time { return m.timestamp }

// IsUser reports whether the message was written by the user.
func (m *Message) IsUser() bool { return m.role == RoleUser }

// IsAssistant reports whether the message came from the assistant.
func (m *Message) IsAssistant() bool { return m.role == RoleAssistant }

// FormatTime formats the timestamp with layout, "15:04" when layout is empty.
func (m *Message) FormatTime(layout string) string {
	if layout == "" {
		layout = "15:04"
	}
	return m.timestamp.Format(layout)
}

// Preview returns the content truncated to maxWidth terminal cells.
// Wide characters and emoji count by their display width.
func (m *Message) Preview(maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(m.content) <= maxWidth {
		return m.content
	}
	return runewidth.Truncate(m.content, maxWidth, "...")
}

// Turn converts the message into the role/content pair sent to the API.
func (m *Message) Turn() ChatTurn {
	return ChatTurn{Role: m.role, Content: m.content}
}

// =============================================================================
// CHAT TURN
// =============================================================================

// ChatTurn is one role/content pair of the history sent to the completion API.
type ChatTurn struct {
	Role    Role
	Content string
}
