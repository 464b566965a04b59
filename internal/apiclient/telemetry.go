package apiclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	slogctx "github.com/veqryn/slog-context"
)

var (
	metersOnce sync.Once
	metersErr  error
	counter    metric.Int64Counter
	hist       metric.Int64Histogram
)

func initMeters() error {
	metersOnce.Do(func() {
		meter := otel.Meter(
			"console-agent/apiclient",
			metric.WithInstrumentationVersion(otel.Version()),
		)

		counter, metersErr = meter.Int64Counter(
			"auth.request_count",
			metric.WithDescription("Outgoing auth request count"),
			metric.WithUnit("request"),
		)
		if metersErr != nil {
			metersErr = oops.In("API Client").
				Wrapf(metersErr, "creating request_count meter")
			return
		}

		hist, metersErr = meter.Int64Histogram(
			"auth.duration",
			metric.WithDescription("Outgoing auth request duration"),
			metric.WithUnit("milliseconds"),
		)
		if metersErr != nil {
			metersErr = oops.In("API Client").
				Wrapf(metersErr, "creating duration meter")
		}
	})

	return metersErr
}

// startOperation covers an auth call with tracing, metrics and request logging.
// The returned finish func must be called with the operation outcome.
func startOperation(ctx context.Context, operation string) (context.Context, func(error)) {
	ctx = slogctx.With(ctx,
		"request_id", uuid.NewString(),
		"operation", operation,
	)

	tracer := otel.Tracer(operation)
	ctx, span := tracer.Start(ctx, operation+"-span", trace.WithAttributes(
		attribute.String("operation", operation),
	))

	start := time.Now()
	slogctx.Info(ctx, fmt.Sprintf("Processing %s request", operation))

	return ctx, func(err error) {
		defer span.End()

		elapsed := time.Since(start)
		attrs := metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.Bool("success", err == nil),
		)
		counter.Add(ctx, 1, attrs)
		hist.Record(ctx, elapsed.Milliseconds(), attrs)

		if err != nil {
			slogctx.Warn(ctx, fmt.Sprintf("Finished %s request", operation), "error", err)
			return
		}
		slogctx.Info(ctx, fmt.Sprintf("Finished %s request", operation))
	}
}
