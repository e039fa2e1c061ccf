package groq

import (
	"context"

	"github.com/satyavak/courtroom-core/core/llms"
	"go.opentelemetry.io/otel/attribute"
)

// RespondInCourt asks the model for the next turn. The response is returned
// as decoded; validation is left to the caller.
func (c *Client) RespondInCourt(ctx context.Context, req llms.CourtRequest, opts ...llms.PromptOption) (*llms.CourtResponse, error) {
	ctx, span := tracer.Start(ctx, "respond in court")
	defer span.End()
	span.SetAttributes(
		attribute.String("court.user_role", req.UserRole.String()),
		attribute.Int("court.history_length", len(req.History)),
	)

	prompt, err := llms.RenderCourtPrompt(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	response, err := PromptJSONSchema[llms.CourtResponse](ctx, c, prompt, opts...)
	if err != nil {
		logger.WarnContext(ctx, "structured court prompt failed", "error", err, "model", c.model)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("court.speaker", response.Speaker.String()),
		attribute.Bool("court.verdict", response.Verdict),
	)
	return response, nil
}
