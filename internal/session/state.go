// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// Phase is the manager's position in the timeout state machine.
type Phase int

const (
	// PhaseInactiveCheck means no warning is showing; periodic checks continue.
	PhaseInactiveCheck Phase = iota
	// PhaseWarning means the countdown is visible.
	PhaseWarning
	// PhaseLoggedOut means the last session ended and no new one has begun.
	PhaseLoggedOut
)

// String returns a string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseInactiveCheck:
		return "INACTIVE_CHECK"
	case PhaseWarning:
		return "WARNING"
	case PhaseLoggedOut:
		return "LOGGED_OUT"
	default:
		return "UNKNOWN"
	}
}

// State is a snapshot of the manager for rendering.
type State struct {
	SessionID        string
	Phase            Phase
	WarningVisible   bool
	SecondsRemaining int
	// Seq increases with every notification. A State with a lower Seq than
	// one already applied is stale.
	Seq uint64
}
