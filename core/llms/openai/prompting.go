package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/invopop/jsonschema"
	"github.com/satyavak/courtroom-core/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrRefused = errors.New("model refused to respond")

// RespondInCourt asks the model for the next turn using a strict JSON schema
// text format. The response is returned as decoded; validation is left to
// the caller.
func (c *Client) RespondInCourt(ctx context.Context, req llms.CourtRequest, opts ...llms.PromptOption) (*llms.CourtResponse, error) {
	ctx, span := tracer.Start(ctx, "respond in court")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", c.model),
		attribute.String("court.user_role", req.UserRole.String()),
	)

	fail := func(err error) (*llms.CourtResponse, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnContext(ctx, "court response request failed", "error", err, "model", c.model)
		return nil, err
	}

	prompt, err := llms.RenderCourtPrompt(req)
	if err != nil {
		return fail(err)
	}
	options := llms.NewPromptOptions(opts...)

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(llms.CourtResponse{})
	reqBody := requestBody{
		Model:       c.model,
		Input:       toOpenAIMessages(options.SystemPrompt, prompt),
		Stream:      false,
		Temperature: options.Temperature,
		Text: &requestBodyText{Format: requestBodyTextFormat{
			Type:   "json_schema",
			Name:   "court_response",
			Schema: schema,
			Strict: true,
		}},
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fail(fmt.Errorf("error marshalling JSON: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return fail(fmt.Errorf("error creating HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fail(fmt.Errorf("error sending request: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("error reading response body: %w", err))
	}
	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		span.SetAttributes(attribute.String("response.error", string(bodyBytes)))
		return fail(fmt.Errorf("non-OK HTTP status: %s", resp.Status))
	}

	var responseBody generalResponseBody
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		return fail(fmt.Errorf("error unmarshalling response body: %w", err))
	}

	text, err := outputText(responseBody)
	if err != nil {
		return fail(err)
	}

	var response llms.CourtResponse
	if err := json.Unmarshal([]byte(llms.StripCodeFence(text)), &response); err != nil {
		return fail(fmt.Errorf("error unmarshalling court response: %w", err))
	}
	return &response, nil
}

// outputText returns the text of the last assistant message in the
// response.
func outputText(responseBody generalResponseBody) (string, error) {
	var text string
	for _, output := range responseBody.Output {
		var outputType generalResponseBodyOutputType
		if err := json.Unmarshal(output, &outputType); err != nil {
			return "", fmt.Errorf("error unmarshalling output type: %w", err)
		}
		if outputType.Type != generalResponseBodyOutputTypeMessage {
			continue
		}

		var outputMessage generalResponseBodyOutputMessage
		if err := json.Unmarshal(output, &outputMessage); err != nil {
			return "", fmt.Errorf("error unmarshalling output message: %w", err)
		}
		for _, content := range outputMessage.Content {
			var contentType generalResponseBodyOutputMessageType
			if err := json.Unmarshal(content, &contentType); err != nil {
				return "", fmt.Errorf("error unmarshalling output message content: %w", err)
			}
			switch contentType.Type {
			case "output_text":
				var outputText generalResponseBodyOutputMessageContentOutputText
				if err := json.Unmarshal(content, &outputText); err != nil {
					return "", fmt.Errorf("error unmarshalling output message content output text: %w", err)
				}
				text = outputText.Text
			case "refusal":
				var outputRefusal generalResponseBodyOutputMessageContentRefusal
				if err := json.Unmarshal(content, &outputRefusal); err != nil {
					return "", fmt.Errorf("error unmarshalling output message content refusal: %w", err)
				}
				return "", fmt.Errorf("%w: %s", ErrRefused, outputRefusal.Refusal)
			}
		}
	}

	if text == "" {
		return "", fmt.Errorf("response has no output text")
	}
	return text, nil
}

type requestBody struct {
	Model       string           `json:"model"`
	Input       []openAIMessage  `json:"input"`
	Stream      bool             `json:"stream"`
	Temperature *float64         `json:"temperature,omitempty"`
	Text        *requestBodyText `json:"text,omitempty"`
}

type requestBodyText struct {
	Format requestBodyTextFormat `json:"format"`
}

type requestBodyTextFormat struct {
	Type   string             `json:"type"`
	Name   string             `json:"name"`
	Schema *jsonschema.Schema `json:"schema"`
	Strict bool               `json:"strict"`
}

type generalResponseBody struct {
	Output []json.RawMessage `json:"output"`
}

type generalResponseBodyOutputType struct {
	// Type is the type of the output item.
	Type generalResponseBodyOutputTypeType `json:"type"`
}

type generalResponseBodyOutputMessage struct {
	// ID is the unique ID of the output item.
	ID string `json:"id"`
	// Content is the content of the output message.
	Content []json.RawMessage `json:"content,omitempty"`
}

type generalResponseBodyOutputMessageType struct {
	// Type is the type of the output message. 'output_text' or 'refusal'.
	Type string `json:"type"`
}

// generalResponseBodyOutputMessageContentOutputText is text output from the
// model.
type generalResponseBodyOutputMessageContentOutputText struct {
	Text string `json:"text"`
}

// generalResponseBodyOutputMessageContentRefusal is a refusal from the model.
type generalResponseBodyOutputMessageContentRefusal struct {
	// Refusal is the refusal explanation from the model.
	Refusal string `json:"refusal"`
}

type generalResponseBodyOutputTypeType string

const (
	generalResponseBodyOutputTypeMessage generalResponseBodyOutputTypeType = "message"
)
