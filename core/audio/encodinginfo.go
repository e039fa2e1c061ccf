// Package audio holds the PCM plumbing shared by capture devices, the
// recognizer and the cue playback mixer.
package audio

import "time"

const (
	// DefaultSampleRate is used for microphone capture.
	DefaultSampleRate = 16000
	DefaultFormat     = "linear16"

	// PlaybackSampleRate is used for cue playback and synthesized cues.
	PlaybackSampleRate = 24000
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: EncodingLinear16}
}

// GetPlaybackEncodingInfo describes the PCM every cue is expected in.
func GetPlaybackEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: PlaybackSampleRate, Format: EncodingLinear16}
}

// EncodingInfo describes mono audio.
type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	}
	return 0
}

// BytesPerSecond returns zero for unknown formats.
func (e EncodingInfo) BytesPerSecond() int {
	if size := e.Format.ByteSize(); size > 0 {
		return e.SampleRate * size
	}
	return 0
}

// Duration returns how long n bytes of audio play for.
func (e EncodingInfo) Duration(n int) time.Duration {
	perSecond := e.BytesPerSecond()
	if perSecond == 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(perSecond)
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
