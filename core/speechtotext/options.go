// Package speechtotext describes the continuous recognition capability the
// engine listens through.
package speechtotext

import (
	"errors"

	"github.com/satyavak/courtroom-core/core/audio"
)

// ErrUnavailable is returned by Transcribe when the host has no usable
// recognition capability, e.g. missing credentials.
var ErrUnavailable = errors.New("speech recognition unavailable")

type TranscriptionOptions struct {
	// InterimTranscriptionCallback receives the latest non-final segment. It
	// replaces any interim segment received before.
	InterimTranscriptionCallback func(transcript string)
	// PartialTranscriptionCallback receives each finalized segment once.
	PartialTranscriptionCallback func(transcript string)

	SpeechStartedCallback func()

	// EndedCallback is called once the stream closed normally, after every
	// pending segment was delivered.
	EndedCallback func()
	// ErrorCallback is called once when the stream terminates abnormally.
	// EndedCallback is not called in that case.
	ErrorCallback func(err error)

	EncodingInfo audio.EncodingInfo
}

type TranscriptionOption func(*TranscriptionOptions)

func WithInterimTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.InterimTranscriptionCallback = callback
	}
}

func WithPartialTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.PartialTranscriptionCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithEndedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EndedCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
