package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/satyavak/courtroom-core/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type websocketMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	closeMsg = websocketMessage{Type: "Close"}
)

func speakMsg(text string) websocketMessage { return websocketMessage{Type: "Speak", Text: text} }

// Speak synthesizes text and blocks until all of its audio was delivered to
// the audio callback or ctx is done.
func (c *TextToSpeechClient) Speak(ctx context.Context, text string, opts ...texttospeech.TextToSpeechOption) (err error) {
	options := texttospeech.NewTextToSpeechOptions(append([]texttospeech.TextToSpeechOption{texttospeech.WithVoice(c.voice)}, opts...)...)

	ctx, span := tracer.Start(ctx, "speak", trace.WithAttributes(
		attribute.String("tts.voice", options.Voice),
		attribute.Int("tts.text_length", len(text)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.apiKey == "" {
		return fmt.Errorf("%w: deepgram api key not found", texttospeech.ErrUnavailable)
	}
	if !slices.Contains(GetAvailableVoices(), options.Voice) {
		return fmt.Errorf("invalid voice %q", options.Voice)
	}
	if strings.TrimSpace(text) == "" {
		options.SpeechEndedCallback()
		return nil
	}

	conn, err := c.connectWebsocket(ctx, options)
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(speakMsg(text)); err != nil {
		return fmt.Errorf("failed to send text to deepgram through websocket: %w", err)
	}
	if err := conn.WriteJSON(flushMsg); err != nil {
		return fmt.Errorf("failed to flush deepgram buffer through websocket: %w", err)
	}

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("failed to read deepgram websocket message: %w", err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(msg) > 0 {
				options.SpeechAudioCallback(msg)
			}
		case websocket.TextMessage:
			var parsedMsg websocketMessage
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.WarnContext(ctx, "failed to unmarshal deepgram message", "error", err)
				continue
			}
			if parsedMsg.Type != "Flushed" {
				continue
			}

			options.SpeechEndedCallback()
			if err := conn.WriteJSON(closeMsg); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				logger.DebugContext(ctx, "failed to send deepgram close message", "error", err)
			}
			return nil
		}
	}
}

func (c *TextToSpeechClient) connectWebsocket(ctx context.Context, options texttospeech.TextToSpeechOptions) (*websocket.Conn, error) {
	speakURL, err := url.Parse(c.speakURL)
	if err != nil {
		return nil, fmt.Errorf("invalid speak url: %w", err)
	}
	queryParams := speakURL.Query()
	queryParams.Set("encoding", options.EncodingInfo.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(options.EncodingInfo.SampleRate))
	queryParams.Set("model", options.Voice)
	queryParams.Set("container", "none")
	speakURL.RawQuery = queryParams.Encode()

	conn, _, err := c.dialer.DialContext(ctx, speakURL.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}
