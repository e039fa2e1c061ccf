package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/satyavak/courtroom-core/core"
	"github.com/satyavak/courtroom-core/core/audio"
	"github.com/satyavak/courtroom-core/core/audio/miniaudio"
	"github.com/satyavak/courtroom-core/core/audio/portaudio"
	"github.com/satyavak/courtroom-core/core/cues"
	"github.com/satyavak/courtroom-core/core/events"
	"github.com/satyavak/courtroom-core/core/llms"
	"github.com/satyavak/courtroom-core/core/llms/groq"
	"github.com/satyavak/courtroom-core/core/llms/openai"
	"github.com/satyavak/courtroom-core/core/llms/remote"
	"github.com/satyavak/courtroom-core/core/narration"
	"github.com/satyavak/courtroom-core/core/scenarios"
	sttdeepgram "github.com/satyavak/courtroom-core/core/speechtotext/deepgram"
	ttsdeepgram "github.com/satyavak/courtroom-core/core/texttospeech/deepgram"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var logger = otelslog.NewLogger("github.com/satyavak/courtroom-core/cmd/courtroom")

// engine bundles the orchestrator with the resources it does not own.
type engine struct {
	orchestrator *orchestration.Orchestrator
	narrator     *narration.Narrator
	forwarder    *eventForwarder
	closeDevice  func() error
}

// eventForwarder hands engine events to the running program. Events emitted
// before the program is attached are dropped; the first render reads a
// snapshot anyway.
type eventForwarder struct {
	program atomic.Pointer[tea.Program]
}

func (f *eventForwarder) attach(program *tea.Program) { f.program.Store(program) }

func (f *eventForwarder) handle(event events.Event) {
	if program := f.program.Load(); program != nil {
		program.Send(engineEventMsg{event: event})
	}
}

func newGateway(cfg Config) (orchestration.ResponseGateway, error) {
	switch cfg.LLMProvider {
	case providerGroq:
		opts := []groq.ClientOption{}
		if cfg.GroqModel != "" {
			opts = append(opts, groq.WithModel(cfg.GroqModel))
		}
		client, err := groq.NewClient(cfg.GroqAPIKey, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	case providerOpenAI:
		opts := []openai.ClientOption{}
		if cfg.OpenAIModel != "" {
			opts = append(opts, openai.WithModel(cfg.OpenAIModel))
		}
		client, err := openai.NewClient(cfg.OpenAIAPIKey, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	case providerRemote:
		opts := []remote.ClientOption{}
		if cfg.GatewayToken != "" {
			opts = append(opts, remote.WithHeader("Authorization", "Bearer "+cfg.GatewayToken))
		}
		client, err := remote.NewClient(cfg.GatewayURL, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
}

type captureDevice interface {
	orchestration.AudioCapture
	CaptureEncodingInfo() audio.EncodingInfo
	Close() error
}

// audioDevice is what a backend offers: capture for voice input and, when
// the backend can play, an output shared by cues and narration.
type audioDevice struct {
	capture captureDevice
	output  *miniaudio.Client
}

func (d audioDevice) Close() error {
	if d.capture == nil {
		return nil
	}
	return d.capture.Close()
}

// borrowedCapture lends the device to the orchestrator without handing over
// its lifetime; the engine closes the device after every user is done.
type borrowedCapture struct {
	device captureDevice
}

func (c borrowedCapture) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	return c.device.StartCapture(ctx, onAudio)
}

func (c borrowedCapture) StopCapture() error { return c.device.StopCapture() }

func (c borrowedCapture) CaptureEncodingInfo() audio.EncodingInfo {
	return c.device.CaptureEncodingInfo()
}

func newAudioDevice(cfg Config) (audioDevice, error) {
	switch cfg.AudioBackend {
	case audioBackendMiniaudio:
		client, err := miniaudio.NewClient()
		if err != nil {
			return audioDevice{}, err
		}
		return audioDevice{capture: client, output: client}, nil
	case audioBackendPortaudio:
		client, err := portaudio.NewClient(portaudio.DefaultBufferSize)
		if err != nil {
			return audioDevice{}, err
		}
		return audioDevice{capture: client}, nil
	}
	return audioDevice{}, nil
}

func loadCatalog(path string) (*scenarios.Catalog, error) {
	if path == "" {
		return scenarios.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scenarios.Load(f)
}

func newEngine(ctx context.Context, cfg Config) (*engine, error) {
	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	opts := []orchestration.OrchestratorOption{
		orchestration.WithContext(ctx),
		orchestration.WithCatalog(catalog),
		orchestration.WithPromptOptions(llms.WithTemperature(cfg.Temperature)),
		orchestration.WithResponseTimeout(cfg.ResponseTimeout),
		orchestration.WithReactionChance(cfg.ReactionChance),
	}

	// Without a gateway every court turn falls back, which keeps the hearing
	// playable offline.
	gateway, err := newGateway(cfg)
	if err != nil {
		logger.WarnContext(ctx, "court gateway unavailable, using fallback turns", "provider", cfg.LLMProvider, "error", err)
	} else {
		opts = append(opts, orchestration.WithResponseGateway(gateway))
	}

	device, err := newAudioDevice(cfg)
	if err != nil {
		logger.WarnContext(ctx, "audio device unavailable", "backend", cfg.AudioBackend, "error", err)
	}

	var cueOutput cues.Output
	if device.output != nil {
		cueOutput = device.output
	}
	bankOpts := []cues.BankOption{cues.WithMuted(cfg.Muted)}
	if cfg.SoundDir != "" {
		bankOpts = append(bankOpts, cues.WithSoundDir(cfg.SoundDir))
	}
	opts = append(opts, orchestration.WithCueBank(cues.NewBank(cueOutput, bankOpts...)))

	// A missing key still wires the client: the first attempt to listen
	// reports speech as unavailable and the hearing carries on in text.
	if device.capture != nil {
		opts = append(opts,
			orchestration.WithAudioCapture(borrowedCapture{device: device.capture}),
			orchestration.WithSpeechToTextClient(sttdeepgram.NewTranscriptionClient(sttdeepgram.WithAPIKey(cfg.DeepgramAPIKey))),
		)
	}

	e := &engine{forwarder: &eventForwarder{}, closeDevice: device.Close}

	if cfg.Narrate && device.output != nil {
		tts, err := ttsdeepgram.NewTextToSpeechClient(ttsdeepgram.WithAPIKey(cfg.DeepgramAPIKey))
		if err != nil {
			logger.WarnContext(ctx, "narration unavailable", "error", err)
		} else {
			e.narrator = narration.NewNarrator(tts, device.output, narration.WithContext(ctx))
			e.narrator.SetMuted(cfg.Muted)
			opts = append(opts, orchestration.WithEventHandler(e.narrator.Handle))
		}
	}

	opts = append(opts, orchestration.WithEventHandler(e.forwarder.handle))
	e.orchestrator = orchestration.NewOrchestrator(opts...)

	return e, nil
}

func (e *engine) setMuted(muted bool) {
	e.orchestrator.SetMuted(muted)
	if e.narrator != nil {
		e.narrator.SetMuted(muted)
	}
}

func (e *engine) Close() error {
	if e.narrator != nil {
		e.narrator.Close()
	}
	return errors.Join(e.orchestrator.Close(), e.closeDevice())
}
