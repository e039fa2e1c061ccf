package narration

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/events"
	"github.com/satyavak/courtroom-core/core/texttospeech"
)

type textToSpeechStub struct {
	mu     sync.Mutex
	err    error
	texts  []string
	voices []string
	block  chan struct{}
}

func (s *textToSpeechStub) Speak(ctx context.Context, text string, opts ...texttospeech.TextToSpeechOption) error {
	options := texttospeech.NewTextToSpeechOptions(opts...)

	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.voices = append(s.voices, options.Voice)
	err, block := s.err, s.block
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	options.SpeechAudioCallback([]byte(text))
	options.SpeechEndedCallback()
	return nil
}

func (s *textToSpeechStub) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.texts)
}

type outputStub struct {
	mu     sync.Mutex
	plays  []string
	stops  int
	played chan struct{}
}

func newOutputStub() *outputStub {
	return &outputStub{played: make(chan struct{}, 8)}
}

func (o *outputStub) Play(id string, pcm []byte, _ float64, _ bool) error {
	o.mu.Lock()
	o.plays = append(o.plays, id+":"+string(pcm))
	o.mu.Unlock()

	if o.played != nil {
		o.played <- struct{}{}
	}
	return nil
}

func (o *outputStub) waitForPlay(t *testing.T) {
	t.Helper()
	select {
	case <-o.played:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for narration to play")
	}
}

func (o *outputStub) Stop(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stops++
}

func (o *outputStub) playList() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.plays...)
}

func turnAppended(speaker courtroom.Speaker, dialogue string, source events.TurnSource) events.TurnAppended {
	return events.NewTurnAppended("session", courtroom.Turn{Speaker: speaker, Dialogue: dialogue}, 0, source, "")
}

func TestNarratorSpeaksCourtTurns(t *testing.T) {
	tts := &textToSpeechStub{}
	output := newOutputStub()
	n := NewNarrator(tts, output)

	n.Handle(turnAppended(courtroom.SpeakerJudge, "Order.", events.TurnSourceCourt))
	output.waitForPlay(t)
	n.Close()

	if got := output.playList(); len(got) != 1 || got[0] != "narration:Order." {
		t.Fatalf("unexpected plays %v", got)
	}
	if tts.voices[0] != DefaultVoices[courtroom.SpeakerJudge] {
		t.Fatalf("expected judge voice, got %q", tts.voices[0])
	}
}

func TestNarratorSkipsUserTurns(t *testing.T) {
	tts := &textToSpeechStub{}
	n := NewNarrator(tts, &outputStub{})

	n.Handle(turnAppended(courtroom.SpeakerProsecution, "I object.", events.TurnSourceUser))
	n.Close()

	if tts.calls() != 0 {
		t.Fatalf("expected user turns to stay silent, got %d calls", tts.calls())
	}
}

func TestNarratorDisablesItselfWhenUnavailable(t *testing.T) {
	tts := &textToSpeechStub{err: fmt.Errorf("%w: no key", texttospeech.ErrUnavailable)}
	n := NewNarrator(tts, &outputStub{})

	n.Handle(turnAppended(courtroom.SpeakerJudge, "Order.", events.TurnSourceCourt))
	n.Close()
	n.Handle(turnAppended(courtroom.SpeakerDefense, "Objection.", events.TurnSourceCourt))
	n.Close()

	if tts.calls() != 1 {
		t.Fatalf("expected a single attempt, got %d", tts.calls())
	}
}

func TestNarratorNewTurnInterruptsPrevious(t *testing.T) {
	tts := &textToSpeechStub{block: make(chan struct{})}
	output := newOutputStub()
	n := NewNarrator(tts, output, WithVoice(courtroom.SpeakerDefense, "aura-2-apollo-en"))

	n.Handle(turnAppended(courtroom.SpeakerJudge, "First.", events.TurnSourceCourt))
	n.Handle(turnAppended(courtroom.SpeakerDefense, "Second.", events.TurnSourceCourt))
	close(tts.block)
	output.waitForPlay(t)
	n.Close()

	if got := output.playList(); len(got) != 1 || got[0] != "narration:Second." {
		t.Fatalf("expected only the latest turn to play, got %v", got)
	}
	if !slices.Contains(tts.voices, "aura-2-apollo-en") {
		t.Fatalf("expected overridden defense voice, got %v", tts.voices)
	}
}

func TestNarratorMutedAndSessionEnd(t *testing.T) {
	tts := &textToSpeechStub{}
	output := newOutputStub()
	n := NewNarrator(tts, output)

	n.SetMuted(true)
	n.Handle(turnAppended(courtroom.SpeakerJudge, "Order.", events.TurnSourceCourt))
	n.Close()
	if tts.calls() != 0 || len(output.playList()) != 0 {
		t.Fatalf("expected muted narrator to stay silent")
	}

	n.SetMuted(false)
	stops := output.stops
	n.Handle(events.NewSessionStateChanged("session", courtroom.StateRunning, courtroom.StateSelection))
	if output.stops != stops+1 {
		t.Fatalf("expected narration to stop when the session ends")
	}
}
