// Package cues owns the courtroom sound effects: a looping room ambience, the
// judge's gavel and short gallery reactions.
package cues

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var logger = otelslog.NewLogger("github.com/satyavak/courtroom-core/core/cues")

var ErrUnknownCue = errors.New("unknown cue")

type Cue string

const (
	CueAmbience Cue = "ambience"
	CueGavel    Cue = "gavel"
	CueCough    Cue = "cough"
	CueMurmur   Cue = "murmur"
)

// Reactions are the gallery cues picked from at random.
var Reactions = []Cue{CueCough, CueMurmur}

// Output renders linear16 PCM at audio.PlaybackSampleRate.
type Output interface {
	Play(id string, pcm []byte, volume float64, loop bool) error
	Stop(id string)
	SetMuted(muted bool)
}

// Sound is a loaded cue.
type Sound struct {
	PCM    []byte
	Volume float64
	Loop   bool
}

// Bank is the single owner of the cue output. It has to be initialized
// before cues are heard and can be initialized again after Dispose.
type Bank struct {
	output  Output
	loaders map[Cue]loader

	mu              sync.Mutex
	sounds          map[Cue]Sound
	initialized     bool
	muted           bool
	ambiencePlaying bool
}

func NewBank(output Output, opts ...BankOption) *Bank {
	if output == nil {
		output = Discard
	}
	bank := &Bank{output: output, loaders: defaultLoaders()}
	for _, opt := range opts {
		opt(bank)
	}
	return bank
}

// Initialize loads every cue and starts the ambience loop unless muted.
func (b *Bank) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	sounds := make(map[Cue]Sound, len(b.loaders))
	var errs []error
	for cue, load := range b.loaders {
		sound, err := load()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to load %s cue: %w", cue, err))
			continue
		}
		sounds[cue] = sound
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	b.sounds = sounds
	b.initialized = true
	b.output.SetMuted(b.muted)
	if !b.muted {
		b.startAmbience(ctx)
	}
	return nil
}

// SetMuted silences every cue. Unmuting resumes the ambience loop without
// replaying one-shot cues.
func (b *Bank) SetMuted(muted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.muted = muted
	b.output.SetMuted(muted)
	if !muted && b.initialized && !b.ambiencePlaying {
		b.startAmbience(context.Background())
	}
}

func (b *Bank) IsMuted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.muted
}

// Trigger plays a one-shot cue. It does nothing while muted or before
// Initialize.
func (b *Bank) Trigger(cue Cue) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized || b.muted {
		return nil
	}
	sound, ok := b.sounds[cue]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCue, cue)
	}
	if err := b.output.Play(string(cue), sound.PCM, sound.Volume, sound.Loop); err != nil {
		return fmt.Errorf("failed to play %s cue: %w", cue, err)
	}
	return nil
}

// Dispose stops every cue and releases the loaded sounds.
func (b *Bank) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}
	for cue := range b.sounds {
		b.output.Stop(string(cue))
	}
	b.sounds = nil
	b.initialized = false
	b.ambiencePlaying = false
}

func (b *Bank) startAmbience(ctx context.Context) {
	sound, ok := b.sounds[CueAmbience]
	if !ok {
		return
	}
	if err := b.output.Play(string(CueAmbience), sound.PCM, sound.Volume, true); err != nil {
		logger.WarnContext(ctx, "failed to start ambience", "error", err)
		return
	}
	b.ambiencePlaying = true
}

type discard struct{}

func (discard) Play(string, []byte, float64, bool) error { return nil }
func (discard) Stop(string)                              {}
func (discard) SetMuted(bool)                            {}

// Discard is an Output that plays nothing, used when no audio device is
// available.
var Discard Output = discard{}
