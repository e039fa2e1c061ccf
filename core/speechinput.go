package orchestration

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/satyavak/courtroom-core/core/events"
	"github.com/satyavak/courtroom-core/core/speechtotext"
	"go.opentelemetry.io/otel/codes"
)

type speechState int

const (
	speechIdle speechState = iota
	speechListening
	// speechStopping waits for the final results flushed after a stop.
	speechStopping
)

// speechSession accumulates the transcript of one listening run. Callbacks
// carry the generation they were registered with and are ignored once it is
// no longer current.
type speechSession struct {
	state      speechState
	generation uint64
	// disabled is set once recognition turned out to be unavailable and
	// stays set until the deliberation session ends.
	disabled  bool
	finalized []string
	interim   string
}

func (s *speechSession) isActive(generation uint64) bool {
	return s.state != speechIdle && s.generation == generation
}

// transcript joins the finalized segments and the latest interim one.
func (s *speechSession) transcript() string {
	segments := slices.Clone(s.finalized)
	if s.interim != "" {
		segments = append(segments, s.interim)
	}
	return strings.Join(segments, " ")
}

func (s *speechSession) clear() {
	s.finalized = nil
	s.interim = ""
}

// ToggleListening starts listening when idle and stops it otherwise. On stop
// the accumulated transcript is submitted as the user's argument.
func (o *Orchestrator) ToggleListening() error {
	o.mu.Lock()
	switch o.speech.state {
	case speechListening:
		generation := o.speech.generation
		o.speech.state = speechStopping
		o.mu.Unlock()
		o.stopListening(generation)
		return nil
	case speechStopping:
		o.mu.Unlock()
		return nil
	}

	if err := o.checkListeningLocked(); err != nil {
		o.mu.Unlock()
		o.flushEvents()
		return err
	}

	o.speech.generation++
	o.speech.state = speechListening
	o.speech.clear()
	generation := o.speech.generation
	sessionID := o.sessionID
	o.queueEvent(events.NewListeningStarted(sessionID))
	o.mu.Unlock()
	o.flushEvents()

	return o.startListening(generation, sessionID)
}

// checkListeningLocked reports whether listening may start. A missing
// recognition capability is announced once and disables voice input.
func (o *Orchestrator) checkListeningLocked() error {
	switch {
	case o.closed:
		return ErrClosed
	case o.state != courtroom.StateRunning:
		return fmt.Errorf("%w: cannot listen in %s", ErrInvalidTransition, o.state)
	case o.inputMode != courtroom.InputModeVoice:
		return fmt.Errorf("%w: listening requires voice input", ErrInvalidInputMode)
	case o.speech.disabled:
		return ErrSpeechUnavailable
	case o.speechToText == nil:
		o.speech.disabled = true
		o.queueEvent(events.NewSpeechUnavailable(o.sessionID, ErrSpeechUnavailable))
		return ErrSpeechUnavailable
	case !o.isUserTurnLocked():
		return ErrNotUserTurn
	}
	return nil
}

func (o *Orchestrator) startListening(generation uint64, sessionID string) error {
	ctx, span := tracer.Start(o.baseContext, "start listening")
	defer span.End()

	err := o.speechToText.Transcribe(ctx,
		speechtotext.WithSpeechStartedCallback(func() {
			logger.DebugContext(ctx, "speech started", "session_id", sessionID)
		}),
		speechtotext.WithInterimTranscriptionCallback(func(transcript string) {
			o.onInterimTranscript(generation, transcript)
		}),
		speechtotext.WithPartialTranscriptionCallback(func(transcript string) {
			o.onFinalTranscript(generation, transcript)
		}),
		speechtotext.WithEndedCallback(func() { o.onListeningEnded(generation) }),
		speechtotext.WithErrorCallback(func(err error) { o.onListeningFailed(generation, err) }),
		speechtotext.WithEncodingInfo(o.audioInput.EncodingInfo()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start listening")
		return o.abortListening(generation, err)
	}

	if err := o.audioInput.Start(ctx, o.forwardAudio); err != nil {
		err = fmt.Errorf("failed to start audio capture: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if stopErr := o.speechToText.StopStream(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
		o.onListeningFailed(generation, err)
		return err
	}
	return nil
}

// abortListening handles a stream that could not be opened.
func (o *Orchestrator) abortListening(generation uint64, err error) error {
	o.mu.Lock()
	if !o.speech.isActive(generation) {
		o.mu.Unlock()
		return nil
	}

	o.speech.state = speechIdle
	o.speech.clear()

	var result error
	if errors.Is(err, speechtotext.ErrUnavailable) {
		o.speech.disabled = true
		o.queueEvent(events.NewSpeechUnavailable(o.sessionID, err))
		result = fmt.Errorf("%w: %w", ErrSpeechUnavailable, err)
	} else {
		o.queueEvent(events.NewSpeechFailed(o.sessionID, err))
		result = fmt.Errorf("failed to start listening: %w", err)
	}
	o.queueEvent(events.NewListeningStopped(o.sessionID, "", false))
	o.mu.Unlock()

	o.flushEvents()
	return result
}

func (o *Orchestrator) forwardAudio(audio []byte) {
	if err := o.speechToText.SendAudio(audio); err != nil {
		logger.DebugContext(o.baseContext, "failed to send audio", "error", err)
	}
}

// stopListening asks the recognizer to flush. If it never reports the end of
// the stream the transcript is finalized after speechStopGrace. A stream that
// cannot be flushed is finalized right away with what was heard so far.
func (o *Orchestrator) stopListening(generation uint64) {
	if err := o.audioInput.Stop(); err != nil {
		logger.WarnContext(o.baseContext, "failed to stop audio capture", "error", err)
	}

	if err := o.speechToText.StopStream(); err != nil {
		logger.WarnContext(o.baseContext, "failed to stop speech stream", "error", err)
		o.onListeningEnded(generation)
		return
	}
	time.AfterFunc(o.speechStopGrace, func() { o.onListeningEnded(generation) })
}

func (o *Orchestrator) onInterimTranscript(generation uint64, transcript string) {
	o.updateTranscript(generation, func(s *speechSession) {
		s.interim = strings.TrimSpace(transcript)
	})
}

// onFinalTranscript records a finalized segment. Finalized segments are
// never retracted.
func (o *Orchestrator) onFinalTranscript(generation uint64, transcript string) {
	o.updateTranscript(generation, func(s *speechSession) {
		if transcript = strings.TrimSpace(transcript); transcript != "" {
			s.finalized = append(s.finalized, transcript)
		}
		s.interim = ""
	})
}

func (o *Orchestrator) updateTranscript(generation uint64, update func(*speechSession)) {
	o.mu.Lock()
	if !o.speech.isActive(generation) {
		o.mu.Unlock()
		return
	}
	update(&o.speech)
	o.queueEvent(events.NewTranscriptUpdated(o.sessionID, o.speech.transcript()))
	o.mu.Unlock()

	o.flushEvents()
}

// onListeningEnded finalizes a listening run. A non-empty transcript is
// submitted when it is still the user's turn.
func (o *Orchestrator) onListeningEnded(generation uint64) {
	o.mu.Lock()
	if !o.speech.isActive(generation) {
		o.mu.Unlock()
		return
	}

	transcript := o.speech.transcript()
	o.speech.state = speechIdle
	o.speech.clear()

	submit := transcript != "" && o.checkSubmitLocked(transcript) == nil
	o.queueEvent(events.NewListeningStopped(o.sessionID, transcript, submit))
	if submit {
		if err := o.submitLocked(transcript); err != nil {
			logger.WarnContext(o.baseContext, "failed to submit transcript", "error", err)
		}
	} else if transcript != "" {
		logger.InfoContext(o.baseContext, "discarding transcript, not the user's turn", "session_id", o.sessionID)
	}
	o.mu.Unlock()

	o.flushEvents()
	if err := o.audioInput.Stop(); err != nil {
		logger.WarnContext(o.baseContext, "failed to stop audio capture", "error", err)
	}
}

// onListeningFailed ends a listening run without submitting anything.
func (o *Orchestrator) onListeningFailed(generation uint64, err error) {
	o.mu.Lock()
	if !o.speech.isActive(generation) {
		o.mu.Unlock()
		return
	}

	o.speech.state = speechIdle
	o.speech.clear()
	o.queueEvent(events.NewSpeechFailed(o.sessionID, err))
	o.queueEvent(events.NewListeningStopped(o.sessionID, "", false))
	o.mu.Unlock()

	logger.WarnContext(o.baseContext, "speech recognition failed", "error", err)
	o.flushEvents()
	if stopErr := o.audioInput.Stop(); stopErr != nil {
		logger.WarnContext(o.baseContext, "failed to stop audio capture", "error", stopErr)
	}
}

// cancelListeningLocked invalidates the current listening run. The returned
// function releases the stream and must be called without holding o.mu.
func (o *Orchestrator) cancelListeningLocked() func() {
	if o.speech.state == speechIdle {
		return func() {}
	}

	o.speech.generation++
	o.speech.state = speechIdle
	o.speech.clear()
	o.queueEvent(events.NewListeningStopped(o.sessionID, "", false))

	return func() {
		if err := o.audioInput.Stop(); err != nil {
			logger.WarnContext(o.baseContext, "failed to stop audio capture", "error", err)
		}
		if err := o.speechToText.StopStream(); err != nil {
			logger.WarnContext(o.baseContext, "failed to stop speech stream", "error", err)
		}
	}
}

func (o *Orchestrator) IsListening() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.speech.state != speechIdle
}

// Transcript is the transcript of the current listening run.
func (o *Orchestrator) Transcript() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.speech.transcript()
}
