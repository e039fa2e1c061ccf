package events

import "github.com/satyavak/courtroom-core/core/courtroom"

const (
	// KindTurnAppended identifies a turn appended to the history.
	KindTurnAppended Kind = "turn.appended"
	// KindVerdictReached identifies the terminal verdict turn.
	KindVerdictReached Kind = "turn.verdict"
	// KindCourtAwaitingChanged identifies gateway call start and end.
	KindCourtAwaitingChanged Kind = "court.awaiting_changed"
)

// TurnSource tells which path produced a turn.
type TurnSource string

const (
	TurnSourceOpening  TurnSource = "opening"
	TurnSourceUser     TurnSource = "user"
	TurnSourceCourt    TurnSource = "court"
	TurnSourceFallback TurnSource = "fallback"
)

// TurnAppended carries the appended turn and its position in the history.
type TurnAppended struct {
	Base
	Turn   courtroom.Turn
	Index  int
	Source TurnSource
	// PreviousSpeaker is the speaker of the turn before this one, empty for
	// the first turn.
	PreviousSpeaker courtroom.Speaker
}

// NewTurnAppended creates a turn appended event.
func NewTurnAppended(sessionID string, turn courtroom.Turn, index int, source TurnSource, previous courtroom.Speaker) TurnAppended {
	return TurnAppended{
		Base:            NewBase(KindTurnAppended, sessionID),
		Turn:            turn,
		Index:           index,
		Source:          source,
		PreviousSpeaker: previous,
	}
}

// VerdictReached carries the verdict turn reasoning.
type VerdictReached struct {
	Base
	Turn      courtroom.Turn
	Reasoning string
}

// NewVerdictReached creates a verdict event.
func NewVerdictReached(sessionID string, turn courtroom.Turn) VerdictReached {
	return VerdictReached{Base: NewBase(KindVerdictReached, sessionID), Turn: turn, Reasoning: turn.Reasoning}
}

// CourtAwaitingChanged reports whether a gateway call is outstanding.
type CourtAwaitingChanged struct {
	Base
	Awaiting bool
}

// NewCourtAwaitingChanged creates a gateway call state event.
func NewCourtAwaitingChanged(sessionID string, awaiting bool) CourtAwaitingChanged {
	return CourtAwaitingChanged{Base: NewBase(KindCourtAwaitingChanged, sessionID), Awaiting: awaiting}
}
