package cues

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/satyavak/courtroom-core/core/audio"
)

const (
	AmbienceVolume = 0.15
	GavelVolume    = 0.5
	ReactionVolume = 0.3
)

type loader func() (Sound, error)

func defaultLoaders() map[Cue]loader {
	rate := audio.PlaybackSampleRate
	return map[Cue]loader{
		CueAmbience: synthesized(audio.SynthesizeAmbience, rate, AmbienceVolume, true),
		CueGavel:    synthesized(audio.SynthesizeGavel, rate, GavelVolume, false),
		CueCough:    synthesized(audio.SynthesizeCough, rate, ReactionVolume, false),
		CueMurmur:   synthesized(audio.SynthesizeMurmur, rate, ReactionVolume, false),
	}
}

func synthesized(synthesize func(sampleRate int) []byte, sampleRate int, volume float64, loop bool) loader {
	return func() (Sound, error) {
		return Sound{PCM: synthesize(sampleRate), Volume: volume, Loop: loop}, nil
	}
}

func inMemory(pcm []byte, volume float64, loop bool) loader {
	return func() (Sound, error) {
		return Sound{PCM: pcm, Volume: volume, Loop: loop}, nil
	}
}

// fromFile reads raw linear16 mono PCM at audio.PlaybackSampleRate. The file
// is read on Initialize so a missing file fails there.
func fromFile(path string, volume float64, loop bool) loader {
	return func() (Sound, error) {
		pcm, err := os.ReadFile(path)
		if err != nil {
			return Sound{}, err
		}
		if len(pcm) < 2 {
			return Sound{}, fmt.Errorf("%s: no audio", path)
		}
		return Sound{PCM: pcm, Volume: volume, Loop: loop}, nil
	}
}

func defaultVolume(cue Cue) (float64, bool) {
	switch cue {
	case CueAmbience:
		return AmbienceVolume, true
	case CueGavel:
		return GavelVolume, false
	}
	return ReactionVolume, false
}

type BankOption func(*Bank)

// WithSound replaces the sound of cue with in-memory PCM.
func WithSound(cue Cue, pcm []byte) BankOption {
	return func(b *Bank) {
		volume, loop := defaultVolume(cue)
		b.loaders[cue] = inMemory(pcm, volume, loop)
	}
}

// WithSoundFile replaces the sound of cue with a raw PCM file.
func WithSoundFile(cue Cue, path string) BankOption {
	return func(b *Bank) {
		volume, loop := defaultVolume(cue)
		b.loaders[cue] = fromFile(path, volume, loop)
	}
}

// WithSoundDir uses <dir>/<cue>.pcm for every cue that has a file there and
// keeps the synthesized sound for the others.
func WithSoundDir(dir string) BankOption {
	return func(b *Bank) {
		if dir == "" {
			return
		}
		for cue := range b.loaders {
			path := filepath.Join(dir, string(cue)+".pcm")
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				continue
			}
			volume, loop := defaultVolume(cue)
			b.loaders[cue] = fromFile(path, volume, loop)
		}
	}
}

// WithMuted sets the initial mute state.
func WithMuted(muted bool) BankOption {
	return func(b *Bank) {
		b.muted = muted
	}
}
