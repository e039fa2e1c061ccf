package events

import "github.com/satyavak/courtroom-core/core/courtroom"

const (
	// KindSessionStateChanged identifies session state transitions.
	KindSessionStateChanged Kind = "session.state_changed"
)

// SessionStateChanged reports a transition between session states.
type SessionStateChanged struct {
	Base
	From courtroom.State
	To   courtroom.State
}

// NewSessionStateChanged creates a session state transition event.
func NewSessionStateChanged(sessionID string, from, to courtroom.State) SessionStateChanged {
	return SessionStateChanged{Base: NewBase(KindSessionStateChanged, sessionID), From: from, To: to}
}
