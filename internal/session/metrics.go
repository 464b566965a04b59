package session

import (
	"context"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"

	triggerManual    = "manual"
	triggerTimer     = "timer"
	triggerImmediate = "immediate"
)

type sessionCounter struct {
	metric.Int64Counter
}

func (c sessionCounter) record(ctx context.Context, result string, attrs ...attribute.KeyValue) {
	if c.Int64Counter == nil {
		return
	}
	attrs = append(attrs, attribute.String("result", result))
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (c sessionCounter) recordTrigger(ctx context.Context, result, trigger string) {
	c.record(ctx, result, attribute.String("trigger", trigger))
}

func (m *Manager) initMeters() error {
	meter := otel.Meter(
		"console-agent/session",
		metric.WithInstrumentationVersion(otel.Version()),
	)

	logins, err := meter.Int64Counter(
		"session.login_count",
		metric.WithDescription("Login attempts"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return oops.In("Session Manager").
			Wrapf(err, "creating login_count meter")
	}

	refreshes, err := meter.Int64Counter(
		"session.refresh_count",
		metric.WithDescription("Token refresh attempts"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return oops.In("Session Manager").
			Wrapf(err, "creating refresh_count meter")
	}

	m.loginCount = sessionCounter{logins}
	m.refreshCount = sessionCounter{refreshes}

	return nil
}
