package events

const (
	// KindListeningStarted identifies start of speech recognition.
	KindListeningStarted Kind = "speech.listening_started"
	// KindTranscriptUpdated identifies transcript snapshot updates.
	KindTranscriptUpdated Kind = "speech.transcript_updated"
	// KindListeningStopped identifies end of speech recognition.
	KindListeningStopped Kind = "speech.listening_stopped"
	// KindSpeechUnavailable identifies a missing recognition capability.
	KindSpeechUnavailable Kind = "speech.unavailable"
	// KindSpeechFailed identifies a recognition runtime error.
	KindSpeechFailed Kind = "speech.failed"
)

// ListeningStarted marks the start of a recognition session.
type ListeningStarted struct{ Base }

// NewListeningStarted creates a listening started event.
func NewListeningStarted(sessionID string) ListeningStarted {
	return ListeningStarted{Base: NewBase(KindListeningStarted, sessionID)}
}

// TranscriptUpdated carries finalized segments followed by the latest interim
// segment.
type TranscriptUpdated struct {
	Base
	Transcript string
}

// NewTranscriptUpdated creates a transcript snapshot event.
func NewTranscriptUpdated(sessionID, transcript string) TranscriptUpdated {
	return TranscriptUpdated{Base: NewBase(KindTranscriptUpdated, sessionID), Transcript: transcript}
}

// ListeningStopped marks the end of a recognition session.
type ListeningStopped struct {
	Base
	Transcript string
	Submitted  bool
}

// NewListeningStopped creates a listening stopped event.
func NewListeningStopped(sessionID, transcript string, submitted bool) ListeningStopped {
	return ListeningStopped{Base: NewBase(KindListeningStopped, sessionID), Transcript: transcript, Submitted: submitted}
}

// SpeechUnavailable is emitted once per session when voice input cannot be
// used.
type SpeechUnavailable struct {
	Base
	Err error
}

// NewSpeechUnavailable creates a speech unavailable notice.
func NewSpeechUnavailable(sessionID string, err error) SpeechUnavailable {
	return SpeechUnavailable{Base: NewBase(KindSpeechUnavailable, sessionID), Err: err}
}

// SpeechFailed reports a recognition runtime error. No turn is submitted.
type SpeechFailed struct {
	Base
	Err error
}

// NewSpeechFailed creates a speech failure event.
func NewSpeechFailed(sessionID string, err error) SpeechFailed {
	return SpeechFailed{Base: NewBase(KindSpeechFailed, sessionID), Err: err}
}
