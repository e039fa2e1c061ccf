package orchestration

import (
	"context"
	"time"

	"github.com/satyavak/courtroom-core/core/cues"
	"github.com/satyavak/courtroom-core/core/llms"
	"github.com/satyavak/courtroom-core/core/scenarios"
	"github.com/satyavak/courtroom-core/core/speechtotext"
)

type OrchestratorOption func(*Orchestrator)

// ResponseGateway produces the next court turn. Implementations make a
// single attempt per call; recovery is handled by the orchestrator.
type ResponseGateway interface {
	RespondInCourt(ctx context.Context, req llms.CourtRequest, opts ...llms.PromptOption) (*llms.CourtResponse, error)
}

// ResponseGatewayFunc adapts a function to ResponseGateway.
type ResponseGatewayFunc func(ctx context.Context, req llms.CourtRequest, opts ...llms.PromptOption) (*llms.CourtResponse, error)

func (f ResponseGatewayFunc) RespondInCourt(ctx context.Context, req llms.CourtRequest, opts ...llms.PromptOption) (*llms.CourtResponse, error) {
	return f(ctx, req, opts...)
}

type SpeechToText interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	SendAudio(audio []byte) error
	StopStream() error
}

// AudioCapture feeds microphone audio while the user is speaking.
type AudioCapture interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

// CueBank is the owned audio cue resource.
type CueBank interface {
	Initialize(ctx context.Context) error
	SetMuted(muted bool)
	IsMuted() bool
	Trigger(cue cues.Cue) error
	Dispose()
}

// RandomSource drives reaction cue selection. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

func WithCatalog(catalog *scenarios.Catalog) OrchestratorOption {
	return func(o *Orchestrator) {
		if catalog != nil {
			o.catalog = catalog
		}
	}
}

func WithResponseGateway(gateway ResponseGateway) OrchestratorOption {
	return func(o *Orchestrator) { o.gateway = gateway }
}

// WithPromptOptions forwards opts to every gateway call.
func WithPromptOptions(opts ...llms.PromptOption) OrchestratorOption {
	return func(o *Orchestrator) { o.promptOptions = append(o.promptOptions, opts...) }
}

// WithResponseTimeout bounds every gateway call. A call that runs out of
// time is answered with the fallback turn. Zero disables the bound.
func WithResponseTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.responseTimeout = max(0, timeout) }
}

func WithSpeechToTextClient(client SpeechToText) OrchestratorOption {
	return func(o *Orchestrator) { o.speechToText = client }
}

func WithAudioCapture(capture AudioCapture) OrchestratorOption {
	return func(o *Orchestrator) { o.audioInput.Set(capture) }
}

func WithCueBank(bank CueBank) OrchestratorOption {
	return func(o *Orchestrator) { o.cueBank = bank }
}

func WithRandomSource(random RandomSource) OrchestratorOption {
	return func(o *Orchestrator) {
		if random != nil {
			o.random = random
		}
	}
}

// WithReactionChance sets the probability of a gallery reaction when an
// advocate takes the floor. It is clamped to [0, 1].
func WithReactionChance(chance float64) OrchestratorOption {
	return func(o *Orchestrator) { o.reactionChance = min(1, max(0, chance)) }
}

// WithEventHandler registers a handler for engine events. Handlers run in
// registration order, outside the session lock, one event at a time.
func WithEventHandler(handler EventHandler) OrchestratorOption {
	return func(o *Orchestrator) {
		if handler != nil {
			o.handlers = append(o.handlers, handler)
		}
	}
}

// WithContext sets the base context for gateway calls, speech sessions and
// cue initialization.
func WithContext(ctx context.Context) OrchestratorOption {
	return func(o *Orchestrator) {
		if ctx != nil {
			o.baseContext = ctx
		}
	}
}
