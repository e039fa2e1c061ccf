package deepgram

import (
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const (
	scopeName = "github.com/satyavak/courtroom-core/core/speechtotext/deepgram"

	defaultListenURL = "wss://api.deepgram.com/v1/listen"
	defaultModel     = "nova-3"
)

var (
	tracer = otel.Tracer(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

// TranscriptionClient streams audio to the Deepgram live listen API. A client
// runs one stream at a time.
type TranscriptionClient struct {
	apiKey    string
	listenURL string
	model     string
	language  string
	dialer    *websocket.Dialer

	conn      *websocket.Conn
	connMu    sync.Mutex
	lastMsgTs time.Time
	stopping  bool
}

type ClientOption func(*TranscriptionClient)

// WithAPIKey overrides the DEEPGRAM_API_KEY environment variable.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *TranscriptionClient) { c.apiKey = apiKey }
}

func WithListenURL(listenURL string) ClientOption {
	return func(c *TranscriptionClient) { c.listenURL = listenURL }
}

func WithModel(model string) ClientOption {
	return func(c *TranscriptionClient) { c.model = model }
}

func WithLanguage(language string) ClientOption {
	return func(c *TranscriptionClient) { c.language = language }
}

func NewTranscriptionClient(opts ...ClientOption) *TranscriptionClient {
	client := &TranscriptionClient{
		apiKey:    os.Getenv("DEEPGRAM_API_KEY"),
		listenURL: defaultListenURL,
		model:     defaultModel,
		language:  "en-US",
		dialer:    websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}
