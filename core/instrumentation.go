package orchestration

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/satyavak/courtroom-core/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	turnsAppended, _ = meter.Int64Counter("courtroom.turns",
		metric.WithDescription("Turns appended to deliberation histories"),
		metric.WithUnit("{turn}"))
	gatewayFallbacks, _ = meter.Int64Counter("courtroom.gateway.fallbacks",
		metric.WithDescription("Court turns replaced by the procedural recess fallback"),
		metric.WithUnit("{turn}"))
	gatewayDuration, _ = meter.Float64Histogram("courtroom.gateway.duration",
		metric.WithDescription("Duration of response gateway calls"),
		metric.WithUnit("s"))
)
