// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the append-only transcript of a session. It lives in
// memory only; insertion order is display order.
type Conversation struct {
	mu        sync.RWMutex
	messages  []*Message
	createdAt time.Time
	updatedAt time.Time
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		messages:  make([]*Message, 0),
		createdAt: now,
		updatedAt: now,
	}
}

// Append adds msg to the end of the transcript. Nil messages are ignored.
func (c *Conversation) Append(msg *Message) {
	if msg == nil {
		return
	}
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.updatedAt = time.Now()
	c.mu.Unlock()
}

// All returns the transcript in order. The returned slice is a copy; the
// messages themselves are immutable.
func (c *Conversation) All() []*Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// IsEmpty returns true if the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return c.Len() == 0
}

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// CreatedAt returns when the conversation started.
func (c *Conversation) CreatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.createdAt
}

// UpdatedAt returns when the last message was appended.
func (c *Conversation) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// CountByRole returns the number of messages sent by role.
func (c *Conversation) CountByRole(role Role) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, msg := range c.messages {
		if msg.role == role {
			n++
		}
	}
	return n
}

// History returns the transcript as role/content pairs for the completion API.
// The welcome message is included; it is part of what the user saw.
func (c *Conversation) History() []ChatTurn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	turns := make([]ChatTurn, 0, len(c.messages))
	for _, msg := range c.messages {
		turns = append(turns, msg.Turn())
	}
	return turns
}
