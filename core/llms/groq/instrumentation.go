package groq

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/satyavak/courtroom-core/core/llms/groq"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	tokenUsage, _ = meter.Int64Counter("llm.groq.tokens",
		metric.WithDescription("Tokens consumed by structured court prompts"),
		metric.WithUnit("{token}"))
)
