package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/satyavak/courtroom-core/core/audio"
	"github.com/satyavak/courtroom-core/core/speechtotext"
	"go.opentelemetry.io/otel/codes"
)

const keepAliveInterval = 5 * time.Second

var errStreamActive = errors.New("deepgram stream already active")

// Transcribe opens a live stream. Results are delivered through the
// callbacks in opts until StopStream flushes and closes it.
func (s *TranscriptionClient) Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error {
	options := speechtotext.TranscriptionOptions{EncodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(&options)
	}

	if s.apiKey == "" {
		return fmt.Errorf("%w: deepgram api key not found", speechtotext.ErrUnavailable)
	}

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	callbacks, wsConfig := newCallbackConfig(options)
	wsConfig.sampleRate = encoding.SampleRate
	wsConfig.encoding = encoding.Format.Name()

	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		return errStreamActive
	}

	conn, err := s.connectWebsocket(ctx, wsConfig)
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	s.conn = conn
	s.stopping = false
	s.lastMsgTs = time.Now()
	go s.readAndProcessMessages(ctx, conn, callbacks)

	return nil
}

type callbacks struct {
	interimTranscriptionCallback func(string)
	partialTranscriptionCallback func(string)
	startSpeechCallback          func()
	endedCallback                func()
	errorCallback                func(error)
}

type websocketConfig struct {
	sampleRate int
	encoding   string

	shouldDetectSpeechStart     bool
	shouldRequestInterimResults bool
}

// newCallbackConfig replaces unset callbacks with no-ops and derives which
// optional stream features are needed.
func newCallbackConfig(options speechtotext.TranscriptionOptions) (callbacks, websocketConfig) {
	noopText := func(string) {}
	cb := callbacks{
		interimTranscriptionCallback: noopText,
		partialTranscriptionCallback: noopText,
		startSpeechCallback:          func() {},
		endedCallback:                func() {},
		errorCallback:                func(error) {},
	}
	if options.InterimTranscriptionCallback != nil {
		cb.interimTranscriptionCallback = options.InterimTranscriptionCallback
	}
	if options.PartialTranscriptionCallback != nil {
		cb.partialTranscriptionCallback = options.PartialTranscriptionCallback
	}
	if options.SpeechStartedCallback != nil {
		cb.startSpeechCallback = options.SpeechStartedCallback
	}
	if options.EndedCallback != nil {
		cb.endedCallback = options.EndedCallback
	}
	if options.ErrorCallback != nil {
		cb.errorCallback = options.ErrorCallback
	}

	return cb, websocketConfig{
		shouldDetectSpeechStart:     options.SpeechStartedCallback != nil,
		shouldRequestInterimResults: options.InterimTranscriptionCallback != nil,
	}
}

func (s *TranscriptionClient) connectWebsocket(ctx context.Context, config websocketConfig) (*websocket.Conn, error) {
	listenURL, err := url.Parse(s.listenURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listen url: %w", err)
	}
	queryParams := listenURL.Query()
	queryParams.Set("encoding", config.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(config.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", s.model)
	queryParams.Set("language", s.language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("punctuate", "true")
	queryParams.Set("endpointing", "300")
	if config.shouldRequestInterimResults {
		queryParams.Set("interim_results", "true")
	}
	if config.shouldDetectSpeechStart {
		queryParams.Set("vad_events", "true")
	}
	listenURL.RawQuery = queryParams.Encode()

	conn, _, err := s.dialer.DialContext(ctx, listenURL.String(),
		http.Header{"Authorization": {"Token " + s.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}

func (s *TranscriptionClient) SendAudio(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil || s.stopping {
		return nil
	}
	s.lastMsgTs = time.Now()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

// StopStream asks Deepgram to flush pending results and close the stream.
// The ended callback fires once the server closes the socket.
func (s *TranscriptionClient) StopStream() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil || s.stopping {
		return nil
	}
	s.stopping = true
	if err := s.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to close deepgram stream through websocket: %w", err)
	}
	return nil
}

func (s *TranscriptionClient) readAndProcessMessages(ctx context.Context, conn *websocket.Conn, cb callbacks) {
	ctx, span := tracer.Start(ctx, "transcribe stream")
	defer span.End()

	keepAliveCtx, keepAliveCancel := context.WithCancel(ctx)
	defer keepAliveCancel()
	go s.keepAlive(keepAliveCtx)

	defer func() {
		s.connMu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.connMu.Unlock()
		conn.Close()
	}()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				cb.endedCallback()
				return
			}
			err = fmt.Errorf("failed to read deepgram websocket message: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.WarnContext(ctx, "deepgram stream terminated", "error", err)
			cb.errorCallback(err)
			return
		}
		if msgType != websocket.BinaryMessage {
			processMessage(ctx, msg, cb)
		}
	}
}

func processMessage(ctx context.Context, msg []byte, cb callbacks) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.WarnContext(ctx, "failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.WarnContext(ctx, "failed to unmarshal deepgram transcript", "error", err)
			return
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}
		transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		if msgResp.IsFinal {
			if transcript != "" {
				cb.partialTranscriptionCallback(transcript)
			}
			return
		}
		cb.interimTranscriptionCallback(transcript)

	case api.TypeSpeechStartedResponse:
		cb.startSpeechCallback()
	}
}

func (s *TranscriptionClient) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil && !s.stopping && time.Since(s.lastMsgTs) >= keepAliveInterval {
				s.lastMsgTs = time.Now()
				if err := s.conn.WriteJSON(struct {
					Type string `json:"type"`
				}{Type: "KeepAlive"}); err != nil {
					logger.WarnContext(ctx, "failed to send deepgram keep alive", "error", err)
				}
			}
			s.connMu.Unlock()
		}
	}
}

// Close drops an active stream without waiting for pending results.
func (s *TranscriptionClient) Close(context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return nil
	}
	s.stopping = true
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close deepgram websocket: %w", err)
	}
	return nil
}
