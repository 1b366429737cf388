// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

// Phase names the variant of a State.
type Phase int

const (
	PhaseUnconfigured Phase = iota
	PhaseReady
	PhaseAwaitingReply
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseUnconfigured:
		return "Unconfigured"
	case PhaseReady:
		return "Ready"
	case PhaseAwaitingReply:
		return "AwaitingReply"
	default:
		return "Unknown"
	}
}

// State is one of Unconfigured, Ready or AwaitingReply.
type State interface {
	Phase() Phase
	isState()
}

// Unconfigured means no credential has been accepted yet.
type Unconfigured struct{}

// Ready means a credential is set and no reply is pending.
type Ready struct{}

// AwaitingReply means the send identified by TaskID is in flight.
type AwaitingReply struct {
	TaskID string
}

func (Unconfigured) Phase() Phase  { return PhaseUnconfigured }
func (Ready) Phase() Phase         { return PhaseReady }
func (AwaitingReply) Phase() Phase { return PhaseAwaitingReply }

func (Unconfigured) isState()  {}
func (Ready) isState()         {}
func (AwaitingReply) isState() {}
