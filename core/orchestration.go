package orchestration

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/events"
	"github.com/satyavak/courtroom-core/core/llms"
	"github.com/satyavak/courtroom-core/core/scenarios"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultReactionChance = 0.4

	defaultSpeechStopGrace = 3 * time.Second
)

// Orchestrator drives one deliberation session at a time: scenario and role
// selection, the ordered turn history, court responses, speech input and the
// audio cues reacting to it all.
type Orchestrator struct {
	catalog         *scenarios.Catalog
	gateway         ResponseGateway
	promptOptions   []llms.PromptOption
	responseTimeout time.Duration
	// speechToText is nil when the host has no recognition capability.
	speechToText SpeechToText
	// audioInput feeds microphone frames to speechToText while listening.
	audioInput      audioInput
	speechStopGrace time.Duration
	cueBank         CueBank
	cueDispatcher   cueDispatcher
	random          RandomSource
	reactionChance  float64
	handlers        []EventHandler
	baseContext     context.Context
	// responseContext bounds court calls; Close cancels it.
	responseContext context.Context
	cancelResponses context.CancelFunc

	mu               sync.Mutex
	closed           bool
	epoch            uint64
	sessionID        string
	state            courtroom.State
	scenario         scenarios.Scenario
	userRole         courtroom.Speaker
	theme            string
	inputMode        courtroom.InputMode
	history          history
	awaiting         bool
	verdictReasoning string
	speech           speechSession
	pending          []events.Event

	emitMu    sync.Mutex
	inFlight  sync.WaitGroup
	closeOnce sync.Once
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		catalog:         scenarios.Default(),
		speechStopGrace: defaultSpeechStopGrace,
		random:          globalRandom{},
		reactionChance:  DefaultReactionChance,
		baseContext:     context.Background(),
		state:           courtroom.StateSelection,
		sessionID:       uuid.NewString(),
	}

	for _, opt := range opts {
		opt(o)
	}

	o.responseContext, o.cancelResponses = context.WithCancel(o.baseContext)
	o.theme = o.catalog.DefaultTheme()
	o.cueDispatcher = newCueDispatcher(o.cueBank, o.random, o.reactionChance)
	return o
}

// Close ends the session, abandons outstanding court responses and releases
// the cue bank, audio capture and speech client.
func (o *Orchestrator) Close() error {
	var errs error
	o.closeOnce.Do(func() {
		o.EndSession()

		o.mu.Lock()
		o.closed = true
		o.mu.Unlock()

		o.cancelResponses()
		o.inFlight.Wait()

		if o.cueBank != nil {
			o.cueBank.Dispose()
		}

		if err := o.audioInput.Close(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to close audio input: %w", err))
		}

		switch client := o.speechToText.(type) {
		case interface{ Close(context.Context) error }:
			if err := client.Close(o.baseContext); err != nil {
				errs = errors.Join(errs, fmt.Errorf("failed to close speech-to-text client: %w", err))
			}
		case interface{ Close() error }:
			if err := client.Close(); err != nil {
				errs = errors.Join(errs, fmt.Errorf("failed to close speech-to-text client: %w", err))
			}
		}

		if errs != nil {
			span := trace.SpanFromContext(o.baseContext)
			span.RecordError(errs)
			span.SetStatus(codes.Error, errs.Error())
		}
	})
	return errs
}

// AwaitResponse blocks until no court response is outstanding.
func (o *Orchestrator) AwaitResponse() { o.inFlight.Wait() }

// SetMuted silences every cue. It never touches the deliberation.
func (o *Orchestrator) SetMuted(muted bool) {
	if o.cueBank != nil {
		o.cueBank.SetMuted(muted)
	}
}

func (o *Orchestrator) IsMuted() bool {
	return o.cueBank != nil && o.cueBank.IsMuted()
}

// globalRandom uses the math/rand/v2 top-level source.
type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) IntN(n int) int   { return rand.IntN(n) }
