package deepgram

import (
	"fmt"
	"os"
	"slices"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const (
	scopeName = "github.com/satyavak/courtroom-core/core/texttospeech/deepgram"

	defaultSpeakURL = "wss://api.deepgram.com/v1/speak"
	DefaultVoice    = "aura-2-thalia-en"
)

var (
	tracer = otel.Tracer(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

// GetAvailableVoices lists the Aura voices the client accepts.
func GetAvailableVoices() []string {
	return []string{
		"aura-2-thalia-en",
		"aura-2-andromeda-en",
		"aura-2-helena-en",
		"aura-2-apollo-en",
		"aura-2-arcas-en",
		"aura-2-aries-en",
		"aura-2-athena-en",
		"aura-2-orion-en",
		"aura-2-zeus-en",
	}
}

// TextToSpeechClient synthesizes speech through the Deepgram speak websocket.
// Every Speak call uses its own connection.
type TextToSpeechClient struct {
	apiKey   string
	speakURL string
	voice    string
	dialer   *websocket.Dialer
}

type ClientOption func(*TextToSpeechClient)

// WithAPIKey overrides the DEEPGRAM_API_KEY environment variable.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *TextToSpeechClient) { c.apiKey = apiKey }
}

func WithSpeakURL(speakURL string) ClientOption {
	return func(c *TextToSpeechClient) { c.speakURL = speakURL }
}

// WithVoice sets the voice used when a request does not pick one.
func WithVoice(voice string) ClientOption {
	return func(c *TextToSpeechClient) { c.voice = voice }
}

func NewTextToSpeechClient(opts ...ClientOption) (*TextToSpeechClient, error) {
	client := &TextToSpeechClient{
		apiKey:   os.Getenv("DEEPGRAM_API_KEY"),
		speakURL: defaultSpeakURL,
		voice:    DefaultVoice,
		dialer:   websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(client)
	}

	if !slices.Contains(GetAvailableVoices(), client.voice) {
		return nil, fmt.Errorf("invalid voice %q", client.voice)
	}
	return client, nil
}
