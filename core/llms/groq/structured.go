package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/satyavak/courtroom-core/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// PromptJSONSchema sends prompt and decodes the reply into T, using the JSON
// schema reflected from T as the strict response format.
func PromptJSONSchema[T any](
	ctx context.Context,
	client *Client,
	prompt string,
	opts ...llms.PromptOption,
) (*T, error) {
	ctx, span := tracer.Start(ctx, "prompt llm structured")
	defer span.End()

	options := llms.NewPromptOptions(opts...)

	// TODO: Implement a custom reflector that only satisfies the subset of
	// jsonschema used by groq
	reflector := jsonschema.Reflector{DoNotReference: true}
	outputType := reflect.TypeFor[T]()
	schema := reflector.ReflectFromType(outputType)

	reqBody := schemaRequestBody{
		Model:       client.model,
		Messages:    toMessages(options.SystemPrompt, prompt),
		Temperature: options.Temperature,
		ResponseFormat: &ChatResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   outputType.Name(),
				Schema: *schema,
				Strict: true,
			},
		},
	}

	span.SetAttributes(attribute.String("request.model", client.model))
	schemaString, _ := schema.MarshalJSON()
	span.SetAttributes(attribute.String("request.schema", string(schemaString)))

	fail := func(err error) (*T, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fail(fmt.Errorf("error marshalling JSON: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return fail(fmt.Errorf("error creating HTTP request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+client.apiKey)

	span.SetAttributes(attribute.String("request.url", req.URL.String()))
	resp, err := client.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("error sending request: %w", err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, err := io.ReadAll(resp.Body); err == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		return fail(fmt.Errorf("non-OK HTTP status: %s", resp.Status))
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("error reading response body: %w", err))
	}
	var responseBody schemaResponseBody
	if err := json.Unmarshal(respBodyBytes, &responseBody); err != nil {
		return fail(fmt.Errorf("error unmarshalling response body: %w", err))
	}
	if len(responseBody.Choices) == 0 {
		return fail(fmt.Errorf("response has no choices"))
	}
	if responseBody.Usage != nil {
		tokenUsage.Add(ctx, int64(responseBody.Usage.TotalTokens),
			metric.WithAttributes(attribute.String("model", client.model)))
	}

	var output T
	content := llms.StripCodeFence(responseBody.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &output); err != nil {
		return fail(fmt.Errorf("error unmarshalling response: %w", err))
	}

	return &output, nil
}

type schemaRequestBody struct {
	Model          string              `json:"model"`
	Messages       []message           `json:"messages"`
	Temperature    *float64            `json:"temperature,omitempty"`
	ResponseFormat *ChatResponseFormat `json:"response_format,omitempty"`
}

type ChatResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

type JSONSchema struct {
	// Name is the name of the chat completion response format json
	// schema.
	//
	// it is used to further identify the schema in the response.
	Name string `json:"name"`
	// Description is the description of the chat completion
	// response format json schema.
	Description string `json:"description,omitempty"`
	// Schema is the schema of the chat completion response format
	// json schema.
	Schema jsonschema.Schema `json:"schema"`
	// Strict determines whether to enforce the schema upon the
	// generated content.
	Strict bool `json:"strict"`
}

type schemaResponseBody struct {
	Choices []struct {
		Message struct {
			Role         string  `json:"role,omitempty"`
			Content      string  `json:"content,omitempty"`
			Reasoning    string  `json:"reasoning,omitempty"`
			FinishReason *string `json:"finish_reason,omitempty"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int     `json:"prompt_tokens"`
		CompletionTokens int     `json:"completion_tokens"`
		TotalTokens      int     `json:"total_tokens"`
		TotalTime        float64 `json:"total_time"`
	} `json:"usage"`
}
