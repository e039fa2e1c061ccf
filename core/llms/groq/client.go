package groq

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	url = "https://api.groq.com/openai/v1/chat/completions"

	DefaultModel = "openai/gpt-oss-120b"
)

var ErrMissingAPIKey = errors.New("groq api key is required")

// Client scripts the court through Groq chat completions with structured
// output.
type Client struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithModel selects the model. It must support json_schema response formats.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithURL points the client at a different chat completions endpoint.
func WithURL(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.url = endpoint
		}
	}
}

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := &Client{
		apiKey:     apiKey,
		model:      DefaultModel,
		url:        url,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}
