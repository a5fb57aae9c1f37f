package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// EnsureTraceID returns ctx carrying a trace ID, minting a UUID when absent.
// Used for work that does not start from an HTTP request.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return WithTraceID(ctx, uuid.NewString())
	}
	return ctx
}

// LoggerWithContext returns the global logger tagged with the request's trace ID.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if traceID := GetTraceID(ctx); traceID != "" {
		logger = logger.With("trace_id", traceID)
	}
	return logger
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With("component", component)
}
