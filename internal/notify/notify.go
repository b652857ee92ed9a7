// Package notify delivers alerts to their consumers.
//
// Sinks are fire-and-forget: EmitAlert never reports failure back to the
// monitor and never de-duplicates, that is the monitor's job.
package notify

import (
	"context"

	"github.com/oshokin/tempwatch/internal/domain/alert"
	"github.com/oshokin/tempwatch/internal/logger"
)

// Sink receives alerts.
type Sink interface {
	EmitAlert(ctx context.Context, a alert.Alert)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, a alert.Alert)

// EmitAlert calls f.
func (f SinkFunc) EmitAlert(ctx context.Context, a alert.Alert) {
	f(ctx, a)
}

// LogSink writes one structured log line per alert.
type LogSink struct{}

// EmitAlert logs the alert at warning level.
func (LogSink) EmitAlert(ctx context.Context, a alert.Alert) {
	logger.WarnKV(
		ctx,
		a.Title,
		"alert_id", a.ID.String(),
		"message", a.Message,
		"celsius", a.Celsius,
		"threshold", a.Threshold,
		"action", a.Action,
	)
}

// multi fans an alert out to several sinks.
type multi []Sink

// Multi returns a sink delivering to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	result := make(multi, 0, len(sinks))

	for _, s := range sinks {
		if s != nil {
			result = append(result, s)
		}
	}

	return result
}

// EmitAlert delivers a to every sink.
func (m multi) EmitAlert(ctx context.Context, a alert.Alert) {
	for _, s := range m {
		s.EmitAlert(ctx, a)
	}
}
