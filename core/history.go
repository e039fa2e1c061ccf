package orchestration

import (
	"slices"

	"github.com/satyavak/courtroom-core/core/courtroom"
)

// history is the append-only turn sequence of one session. Once a verdict
// turn is appended the history is sealed.
type history struct {
	turns []courtroom.Turn
}

// Append adds turn at the end and returns its index.
func (h *history) Append(turn courtroom.Turn) (int, error) {
	if h.Sealed() {
		return 0, ErrHistorySealed
	}
	h.turns = append(h.turns, turn.Normalized())
	return len(h.turns) - 1, nil
}

func (h *history) Sealed() bool {
	last, ok := h.Last()
	return ok && last.Verdict
}

func (h *history) Last() (courtroom.Turn, bool) {
	if len(h.turns) == 0 {
		return courtroom.Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

func (h *history) Len() int                { return len(h.turns) }
func (h *history) Turns() []courtroom.Turn { return slices.Clone(h.turns) }
func (h *history) Reset()                  { h.turns = nil }
