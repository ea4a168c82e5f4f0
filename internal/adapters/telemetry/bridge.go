package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/lokal/internal/core/ports"
)

// LogBridge implements sdktrace.SpanProcessor and reports finished spans through the logger.
// It backs the --verbose flag.
type LogBridge struct {
	logger ports.Logger
}

// NewLogBridge returns a new LogBridge.
func NewLogBridge(logger ports.Logger) *LogBridge {
	return &LogBridge{logger: logger}
}

// OnStart does nothing.
func (b *LogBridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name and duration.
func (b *LogBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if !s.SpanContext().IsValid() {
		return
	}
	msg := fmt.Sprintf("%s took %s", s.Name(), s.EndTime().Sub(s.StartTime()).Round(1e6))
	if s.Status().Code == codes.Error {
		msg += " (failed: " + s.Status().Description + ")"
	}
	b.logger.Info(msg)
}

// Shutdown does nothing.
func (b *LogBridge) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush does nothing.
func (b *LogBridge) ForceFlush(_ context.Context) error {
	return nil
}
