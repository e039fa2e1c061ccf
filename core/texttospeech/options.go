// Package texttospeech describes the speech synthesis capability used to
// voice court turns.
package texttospeech

import (
	"errors"

	"github.com/satyavak/courtroom-core/core/audio"
)

// ErrUnavailable is returned when the host has no usable synthesis
// capability, e.g. missing credentials.
var ErrUnavailable = errors.New("speech synthesis unavailable")

type TextToSpeechOptions struct {
	// SpeechAudioCallback is called with every chunk of synthesized audio in
	// the order it was produced.
	SpeechAudioCallback func(audio []byte)
	// SpeechEndedCallback is called once all audio for the text was
	// delivered.
	SpeechEndedCallback func()

	Voice        string
	EncodingInfo audio.EncodingInfo
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithSpeechAudioCallback(callback func([]byte)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) { o.SpeechAudioCallback = callback }
}

func WithSpeechEndedCallback(callback func()) TextToSpeechOption {
	return func(o *TextToSpeechOptions) { o.SpeechEndedCallback = callback }
}

// WithVoice selects a provider specific voice. Empty keeps the client's
// default.
func WithVoice(voice string) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if voice != "" {
			o.Voice = voice
		}
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if !encodingInfo.IsZero() {
			o.EncodingInfo = encodingInfo
		}
	}
}

// NewTextToSpeechOptions applies opts over no-op callbacks and the playback
// encoding.
func NewTextToSpeechOptions(opts ...TextToSpeechOption) TextToSpeechOptions {
	options := TextToSpeechOptions{
		SpeechAudioCallback: func([]byte) {},
		SpeechEndedCallback: func() {},
		EncodingInfo:        audio.GetPlaybackEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
