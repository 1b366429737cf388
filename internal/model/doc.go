// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: append-only, in-memory transcript of a chat session
//   - Message: immutable entry with role, content and timestamp
//   - ChatTurn: role/content pair handed to the completion client
//   - Role: message role enumeration (user, assistant, system)
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewWelcomeMessage(persona.Default()))
//	conv.Append(model.NewUserMessage("Hello!"))
//	reply, err := client.Send(ctx, conv.History())
package model
