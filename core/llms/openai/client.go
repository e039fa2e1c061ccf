package openai

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	url = "https://api.openai.com/v1/responses"

	DefaultModel = "gpt-4.1-mini"
)

var ErrMissingAPIKey = errors.New("openai api key is required")

// Client scripts the court through the OpenAI Responses API.
type Client struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithURL(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.url = endpoint
		}
	}
}

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
