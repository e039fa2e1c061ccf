package orchestration

import "errors"

var (
	ErrInvalidTransition = errors.New("action not allowed in current session state")
	ErrUnknownScenario   = errors.New("unknown scenario")
	ErrInvalidScenario   = errors.New("invalid scenario")
	ErrInvalidRole       = errors.New("role must be defense or prosecution")
	ErrUnknownTheme      = errors.New("unknown theme")
	ErrInvalidInputMode  = errors.New("invalid input mode")
	ErrEmptyArgument     = errors.New("argument is empty")
	ErrNotUserTurn       = errors.New("not the user's turn")
	ErrSpeechUnavailable = errors.New("speech input unavailable")
	ErrHistorySealed     = errors.New("history is sealed by a verdict")
	ErrClosed            = errors.New("orchestrator closed")

	errNoGateway     = errors.New("no response gateway configured")
	errGatewayPanic  = errors.New("response gateway panicked")
	errEmptyResponse = errors.New("response gateway returned no response")
)
