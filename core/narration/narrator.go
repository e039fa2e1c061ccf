// Package narration voices court turns as they are appended.
package narration

import (
	"context"
	"errors"
	"sync"

	"github.com/satyavak/courtroom-core/core/audio"
	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/events"
	"github.com/satyavak/courtroom-core/core/texttospeech"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var logger = otelslog.NewLogger("github.com/satyavak/courtroom-core/core/narration")

const playbackID = "narration"

type TextToSpeech interface {
	Speak(ctx context.Context, text string, opts ...texttospeech.TextToSpeechOption) error
}

// Output renders linear16 PCM at audio.PlaybackSampleRate.
type Output interface {
	Play(id string, pcm []byte, volume float64, loop bool) error
	Stop(id string)
}

// DefaultVoices gives each courtroom role its own voice.
var DefaultVoices = map[courtroom.Speaker]string{
	courtroom.SpeakerJudge:       "aura-2-zeus-en",
	courtroom.SpeakerDefense:     "aura-2-thalia-en",
	courtroom.SpeakerProsecution: "aura-2-orion-en",
}

// Narrator speaks every turn the user did not write. A new turn interrupts
// the one being spoken.
type Narrator struct {
	tts         TextToSpeech
	output      Output
	voices      map[courtroom.Speaker]string
	volume      float64
	baseContext context.Context

	mu          sync.Mutex
	cancel      context.CancelFunc
	generation  uint64
	muted       bool
	unavailable bool
	wg          sync.WaitGroup
}

type NarratorOption func(*Narrator)

func WithVoice(speaker courtroom.Speaker, voice string) NarratorOption {
	return func(n *Narrator) { n.voices[speaker] = voice }
}

func WithVolume(volume float64) NarratorOption {
	return func(n *Narrator) { n.volume = min(1, max(0, volume)) }
}

func WithContext(ctx context.Context) NarratorOption {
	return func(n *Narrator) {
		if ctx != nil {
			n.baseContext = ctx
		}
	}
}

func NewNarrator(tts TextToSpeech, output Output, opts ...NarratorOption) *Narrator {
	n := &Narrator{
		tts:         tts,
		output:      output,
		voices:      make(map[courtroom.Speaker]string, len(DefaultVoices)),
		volume:      1,
		baseContext: context.Background(),
		cancel:      func() {},
	}
	for speaker, voice := range DefaultVoices {
		n.voices[speaker] = voice
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Handle is meant to be registered as an engine event handler.
func (n *Narrator) Handle(event events.Event) {
	switch e := event.(type) {
	case events.TurnAppended:
		if e.Source != events.TurnSourceUser {
			n.narrate(e.Turn)
		}
	case events.SessionStateChanged:
		if e.To == courtroom.StateSelection {
			n.Stop()
		}
	}
}

func (n *Narrator) narrate(turn courtroom.Turn) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	if n.muted || n.unavailable || n.tts == nil || n.output == nil {
		return
	}

	ctx, cancel := context.WithCancel(n.baseContext)
	n.cancel = cancel
	n.generation++
	generation := n.generation

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer cancel()

		var pcm []byte
		err := n.tts.Speak(ctx, turn.Dialogue,
			texttospeech.WithVoice(n.voices[turn.Speaker]),
			texttospeech.WithEncodingInfo(audio.GetPlaybackEncodingInfo()),
			texttospeech.WithSpeechAudioCallback(func(chunk []byte) { pcm = append(pcm, chunk...) }),
		)
		n.finish(ctx, generation, pcm, err)
	}()
}

func (n *Narrator) finish(ctx context.Context, generation uint64, pcm []byte, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case errors.Is(err, texttospeech.ErrUnavailable):
		if !n.unavailable {
			logger.WarnContext(ctx, "narration disabled", "error", err)
		}
		n.unavailable = true
		return
	case ctx.Err() != nil:
		return
	case err != nil:
		logger.WarnContext(ctx, "failed to narrate turn", "error", err)
		return
	}

	if generation != n.generation || n.muted || len(pcm) == 0 {
		return
	}
	if err := n.output.Play(playbackID, pcm, n.volume, false); err != nil {
		logger.WarnContext(ctx, "failed to play narration", "error", err)
	}
}

// SetMuted silences narration. Muting stops the turn being spoken.
func (n *Narrator) SetMuted(muted bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.muted = muted
	if muted {
		n.stopLocked()
	}
}

// Stop interrupts the turn being spoken.
func (n *Narrator) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
}

func (n *Narrator) stopLocked() {
	n.cancel()
	n.generation++
	if n.output != nil {
		n.output.Stop(playbackID)
	}
}

// Close stops narration and waits for pending synthesis to return.
func (n *Narrator) Close() {
	n.Stop()
	n.wg.Wait()
}
