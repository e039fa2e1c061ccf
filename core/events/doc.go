// Package events defines the typed deliberation event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*
//   - turn.*
//   - court.*
//   - speech.*
//
// session events
//
//   - SessionStateChanged (session.state_changed): the session moved between
//     states. Ending a session is reported as a change to "selection".
//
// turn events
//
//   - TurnAppended (turn.appended): a turn was appended to the history. The
//     index is the position of the turn in the history.
//   - VerdictReached (turn.verdict): the appended turn carried the verdict.
//
// court events
//
//   - CourtAwaitingChanged (court.awaiting_changed): a response gateway call
//     started or finished.
//
// speech events
//
//   - ListeningStarted (speech.listening_started): recognition is running.
//   - TranscriptUpdated (speech.transcript_updated): mutable point-in-time
//     snapshot of finalized plus interim text.
//   - ListeningStopped (speech.listening_stopped): recognition ended; Submitted
//     tells whether the transcript became a turn.
//   - SpeechUnavailable (speech.unavailable): no recognition capability, voice
//     input is disabled until the session ends.
//   - SpeechFailed (speech.failed): recognition terminated with an error.
package events
