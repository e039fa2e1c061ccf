package orchestration

import (
	"context"
	"sync"
	"testing"

	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/cues"
	"github.com/satyavak/courtroom-core/core/events"
	"github.com/satyavak/courtroom-core/core/llms"
	"github.com/satyavak/courtroom-core/core/speechtotext"
)

type gatewayStub struct {
	mu       sync.Mutex
	requests []llms.CourtRequest
	respond  func(ctx context.Context, req llms.CourtRequest) (*llms.CourtResponse, error)
}

func (g *gatewayStub) RespondInCourt(ctx context.Context, req llms.CourtRequest, _ ...llms.PromptOption) (*llms.CourtResponse, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	respond := g.respond
	g.mu.Unlock()

	if respond == nil {
		return &llms.CourtResponse{Speaker: courtroom.SpeakerJudge, Dialogue: "Proceed."}, nil
	}
	return respond(ctx, req)
}

func (g *gatewayStub) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *gatewayStub) lastRequest() llms.CourtRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

func replyWith(speaker courtroom.Speaker, dialogue string) func(context.Context, llms.CourtRequest) (*llms.CourtResponse, error) {
	return func(context.Context, llms.CourtRequest) (*llms.CourtResponse, error) {
		return &llms.CourtResponse{Speaker: speaker, Dialogue: dialogue}, nil
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.Kind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func (r *eventRecorder) count(kind events.Kind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type speechToTextClientStub struct {
	mu            sync.Mutex
	transcribeErr error
	stopErr       error
	endOnStop     bool
	options       speechtotext.TranscriptionOptions
	transcribes   int
	stops         int
	audio         [][]byte
}

func (s *speechToTextClientStub) Transcribe(_ context.Context, opts ...speechtotext.TranscriptionOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcribes++
	if s.transcribeErr != nil {
		return s.transcribeErr
	}
	s.options = speechtotext.TranscriptionOptions{}
	for _, opt := range opts {
		opt(&s.options)
	}
	return nil
}

func (s *speechToTextClientStub) SendAudio(audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = append(s.audio, audio)
	return nil
}

func (s *speechToTextClientStub) StopStream() error {
	s.mu.Lock()
	s.stops++
	err := s.stopErr
	ended := s.endOnStop && err == nil
	options := s.options
	s.mu.Unlock()

	if ended {
		options.EndedCallback()
	}
	return err
}

func (s *speechToTextClientStub) callbacks() speechtotext.TranscriptionOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

type audioCaptureStub struct {
	mu       sync.Mutex
	onAudio  func([]byte)
	starts   int
	stops    int
	startErr error
}

func (a *audioCaptureStub) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.starts++
	if a.startErr != nil {
		return a.startErr
	}
	a.onAudio = onAudio
	return nil
}

func (a *audioCaptureStub) StopCapture() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stops++
	return nil
}

type cueBankStub struct {
	mu          sync.Mutex
	initialized int
	disposed    int
	muted       bool
	triggered   []cues.Cue
}

func (b *cueBankStub) Initialize(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized++
	return nil
}

func (b *cueBankStub) SetMuted(muted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.muted = muted
}

func (b *cueBankStub) IsMuted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.muted
}

func (b *cueBankStub) Trigger(cue cues.Cue) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.triggered = append(b.triggered, cue)
	return nil
}

func (b *cueBankStub) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disposed++
}

func (b *cueBankStub) cues() []cues.Cue {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]cues.Cue(nil), b.triggered...)
}

// randomStub replays fixed values.
type randomStub struct {
	floats []float64
	ints   []int
}

func (r *randomStub) Float64() float64 {
	if len(r.floats) == 0 {
		return 1
	}
	value := r.floats[0]
	r.floats = r.floats[1:]
	return value
}

func (r *randomStub) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	value := r.ints[0]
	r.ints = r.ints[1:]
	return value % n
}

// startHearing walks a fresh orchestrator into the running state.
func startHearing(t *testing.T, o *Orchestrator, scenarioKey string, role courtroom.Speaker, mode courtroom.InputMode) {
	t.Helper()

	if err := o.SelectScenarioByKey(scenarioKey); err != nil {
		t.Fatalf("select scenario: %v", err)
	}
	if err := o.SelectRole(role); err != nil {
		t.Fatalf("select role: %v", err)
	}
	if err := o.SelectTheme("classic_mahogany"); err != nil {
		t.Fatalf("select theme: %v", err)
	}
	if err := o.SelectInputMode(mode); err != nil {
		t.Fatalf("select input mode: %v", err)
	}
}
