// Package remote talks to a court gateway service that accepts the plain
// history payload and returns a single court response.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/satyavak/courtroom-core/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrMissingEndpoint = errors.New("remote gateway endpoint is required")

// maxResponseSize caps the body read from the gateway.
const maxResponseSize = 1 << 20

type Client struct {
	endpoint   string
	headers    http.Header
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHeader adds a header sent with every request, e.g. an API token.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	client := &Client{
		endpoint:   endpoint,
		headers:    http.Header{},
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// RespondInCourt posts the request payload and decodes the reply. Prompt
// options are ignored; the remote service owns its prompting.
func (c *Client) RespondInCourt(ctx context.Context, req llms.CourtRequest, _ ...llms.PromptOption) (*llms.CourtResponse, error) {
	ctx, span := tracer.Start(ctx, "respond in court")
	defer span.End()

	fail := func(err error) (*llms.CourtResponse, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnContext(ctx, "remote court gateway failed", "error", err)
		return nil, err
	}

	payload, err := llms.NewPayload(req)
	if err != nil {
		return fail(err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fail(fmt.Errorf("error marshalling JSON: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fail(fmt.Errorf("error creating HTTP request: %w", err))
	}
	httpReq.Header = c.headers.Clone()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fail(fmt.Errorf("error sending request: %w", err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fail(fmt.Errorf("error reading response body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("non-OK HTTP status: %s", resp.Status))
	}

	var response llms.CourtResponse
	if err := json.Unmarshal([]byte(llms.StripCodeFence(string(respBody))), &response); err != nil {
		return fail(fmt.Errorf("error unmarshalling court response: %w", err))
	}
	return &response, nil
}
