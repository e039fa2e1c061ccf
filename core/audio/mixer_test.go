package audio

import (
	"slices"
	"testing"
)

func constant(value int16, n int) []byte {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = value
	}
	return SamplesToBytes(samples)
}

func TestMixerSumsVoicesWithVolume(t *testing.T) {
	mixer := NewMixer()
	mixer.Play("a", constant(1000, 4), 0.5, false)
	mixer.Play("b", constant(2000, 4), 1, false)

	out := make([]byte, 8)
	if n := mixer.Read(out); n != 8 {
		t.Fatalf("expected 8 bytes, got %d", n)
	}

	for i, sample := range BytesToSamples(out) {
		if sample != 2500 {
			t.Fatalf("expected sample %d to be 2500, got %d", i, sample)
		}
	}
	if playing := mixer.Playing(); len(playing) != 0 {
		t.Fatalf("expected one-shot voices to finish, got %v", playing)
	}
}

func TestMixerClampsOverflow(t *testing.T) {
	mixer := NewMixer()
	mixer.Play("a", constant(30000, 2), 1, false)
	mixer.Play("b", constant(30000, 2), 1, false)

	out := make([]byte, 4)
	mixer.Read(out)

	if got := BytesToSamples(out)[0]; got != 32767 {
		t.Fatalf("expected clamped sample, got %d", got)
	}
}

func TestMixerLoopsVoices(t *testing.T) {
	mixer := NewMixer()
	mixer.Play("loop", SamplesToBytes([]int16{1, 2, 3}), 1, true)

	out := make([]byte, 14)
	mixer.Read(out)

	if got := BytesToSamples(out); !slices.Equal(got, []int16{1, 2, 3, 1, 2, 3, 1}) {
		t.Fatalf("unexpected looped samples %v", got)
	}
	if playing := mixer.Playing(); !slices.Equal(playing, []string{"loop"}) {
		t.Fatalf("expected loop to keep playing, got %v", playing)
	}
}

func TestMixerMuteDropsOneShotsAndPausesLoops(t *testing.T) {
	mixer := NewMixer()
	mixer.Play("loop", SamplesToBytes([]int16{1, 2, 3, 4}), 1, true)
	mixer.Play("gavel", constant(500, 10), 1, false)

	out := make([]byte, 4)
	mixer.Read(out)
	mixer.SetMuted(true)

	mixer.Play("cough", constant(500, 10), 1, false)
	mixer.Read(out)
	if got := BytesToSamples(out); !slices.Equal(got, []int16{0, 0}) {
		t.Fatalf("expected silence while muted, got %v", got)
	}
	if playing := mixer.Playing(); !slices.Equal(playing, []string{"loop"}) {
		t.Fatalf("expected only the loop to survive mute, got %v", playing)
	}

	mixer.SetMuted(false)
	mixer.Read(out)
	if got := BytesToSamples(out); !slices.Equal(got, []int16{3, 4}) {
		t.Fatalf("expected loop to resume where it paused, got %v", got)
	}
}

func TestMixerStopAndRestart(t *testing.T) {
	mixer := NewMixer()
	mixer.Play("a", constant(100, 10), 1, false)
	mixer.Stop("a")
	mixer.Play("b", SamplesToBytes([]int16{7, 8}), 1, false)
	mixer.Play("b", SamplesToBytes([]int16{9}), 1, false)

	out := make([]byte, 4)
	mixer.Read(out)
	if got := BytesToSamples(out); !slices.Equal(got, []int16{9, 0}) {
		t.Fatalf("expected restarted voice only, got %v", got)
	}
}
