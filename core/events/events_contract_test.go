package events

import (
	"errors"
	"testing"

	"github.com/satyavak/courtroom-core/core/courtroom"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	turn := courtroom.Turn{Speaker: courtroom.SpeakerJudge, Dialogue: "Order.", Verdict: true, Reasoning: "r"}
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "session state changed", event: NewSessionStateChanged("s", courtroom.StateSelection, courtroom.StateRoleSelection), expected: KindSessionStateChanged},
		{name: "turn appended", event: NewTurnAppended("s", turn, 0, TurnSourceCourt, ""), expected: KindTurnAppended},
		{name: "verdict reached", event: NewVerdictReached("s", turn), expected: KindVerdictReached},
		{name: "court awaiting changed", event: NewCourtAwaitingChanged("s", true), expected: KindCourtAwaitingChanged},
		{name: "listening started", event: NewListeningStarted("s"), expected: KindListeningStarted},
		{name: "transcript updated", event: NewTranscriptUpdated("s", "I object"), expected: KindTranscriptUpdated},
		{name: "listening stopped", event: NewListeningStopped("s", "", false), expected: KindListeningStopped},
		{name: "speech unavailable", event: NewSpeechUnavailable("s", errors.New("missing")), expected: KindSpeechUnavailable},
		{name: "speech failed", event: NewSpeechFailed("s", errors.New("network")), expected: KindSpeechFailed},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
			if got := testCase.event.SessionID(); got != "s" {
				t.Fatalf("expected session id %q, got %q", "s", got)
			}
			if testCase.event.Timestamp().IsZero() {
				t.Fatalf("expected timestamp to be set")
			}
		})
	}
}

func TestVerdictReachedCopiesReasoning(t *testing.T) {
	event := NewVerdictReached("s", courtroom.Turn{Speaker: courtroom.SpeakerJudge, Verdict: true, Reasoning: "Flight risk is low."})

	if event.Reasoning != "Flight risk is low." {
		t.Fatalf("expected reasoning to be copied, got %q", event.Reasoning)
	}
}
