package audio

import (
	"bytes"
	"testing"
	"time"
)

func TestSynthesizedCues(t *testing.T) {
	testCases := []struct {
		name       string
		synthesize func(int) []byte
		minimum    time.Duration
	}{
		{name: "gavel", synthesize: SynthesizeGavel, minimum: 400 * time.Millisecond},
		{name: "cough", synthesize: SynthesizeCough, minimum: 300 * time.Millisecond},
		{name: "murmur", synthesize: SynthesizeMurmur, minimum: time.Second},
		{name: "ambience", synthesize: SynthesizeAmbience, minimum: 4 * time.Second},
	}

	encoding := GetPlaybackEncodingInfo()
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			pcm := testCase.synthesize(encoding.SampleRate)
			if len(pcm)%2 != 0 {
				t.Fatalf("expected whole linear16 samples, got %d bytes", len(pcm))
			}
			if got := encoding.Duration(len(pcm)); got < testCase.minimum {
				t.Fatalf("expected at least %s of audio, got %s", testCase.minimum, got)
			}
			if bytes.Equal(pcm, make([]byte, len(pcm))) {
				t.Fatalf("expected audible samples")
			}
			if !bytes.Equal(pcm, testCase.synthesize(encoding.SampleRate)) {
				t.Fatalf("expected deterministic output")
			}
		})
	}
}

func TestEncodingInfoDuration(t *testing.T) {
	encoding := GetDefaultEncodingInfo()
	if got := encoding.Duration(32000); got != time.Second {
		t.Fatalf("expected one second, got %s", got)
	}
	if got := (EncodingInfo{SampleRate: 8000, Format: "opus"}).Duration(100); got != 0 {
		t.Fatalf("expected zero duration for unknown format, got %s", got)
	}
}

func TestSampleConversionRoundTrip(t *testing.T) {
	samples := []int16{-32768, -1, 0, 1, 32767}
	got := BytesToSamples(SamplesToBytes(samples))
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, samples[i], got[i])
		}
	}
}
