// Package courtroom holds the deliberation data model shared by the engine,
// the response gateways and the event contract.
package courtroom

// Speaker identifies who delivered a turn.
type Speaker string

const (
	SpeakerDefense     Speaker = "defense"
	SpeakerProsecution Speaker = "prosecution"
	SpeakerJudge       Speaker = "judge"
)

// IsValid reports whether s is one of the three courtroom roles.
func (s Speaker) IsValid() bool {
	switch s {
	case SpeakerDefense, SpeakerProsecution, SpeakerJudge:
		return true
	}
	return false
}

// IsAdvocate reports whether s is a role a human participant can take.
func (s Speaker) IsAdvocate() bool {
	return s == SpeakerDefense || s == SpeakerProsecution
}

func (s Speaker) String() string { return string(s) }

// Opponent returns the advocate role opposing role. The judge has no
// opponent and is returned unchanged.
func Opponent(role Speaker) Speaker {
	switch role {
	case SpeakerDefense:
		return SpeakerProsecution
	case SpeakerProsecution:
		return SpeakerDefense
	}
	return role
}

// Turn is a single dialogue contribution.
type Turn struct {
	Speaker  Speaker
	Dialogue string

	// Verdict marks the terminal turn of a session.
	Verdict bool
	// Reasoning is only kept for verdict turns.
	Reasoning string
}

// Normalized returns a copy of t with Reasoning dropped unless the turn is a
// verdict.
func (t Turn) Normalized() Turn {
	if !t.Verdict {
		t.Reasoning = ""
	}
	return t
}

type State string

const (
	StateSelection            State = "selection"
	StateRoleSelection        State = "role_selection"
	StateThemeSelection       State = "theme_selection"
	StateInputMethodSelection State = "input_method_selection"
	StateRunning              State = "running"
	StateVerdict              State = "verdict"
)

func (s State) String() string { return string(s) }

type InputMode string

const (
	InputModeText  InputMode = "text"
	InputModeVoice InputMode = "voice"
)

func (m InputMode) IsValid() bool {
	return m == InputModeText || m == InputModeVoice
}

// Actor is the party that has to produce the next turn.
type Actor string

const (
	// ActorUser is the human participant.
	ActorUser Actor = "user"
	// ActorCourt is the AI side: the opposing counsel or the judge.
	ActorCourt Actor = "court"
	// ActorNone means no further turns are expected.
	ActorNone Actor = "none"
)
