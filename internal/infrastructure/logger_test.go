package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"crpdash/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLogger_OnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, GetLogger())
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, config.LoggingConfig{Level: "info"})

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "with trace")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trace-123", entry["trace_id"])
}

func TestTraceHandler_WithAttrsKeepsInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, config.LoggingConfig{Level: "info"})
	logger = WithComponent(logger, "loader")

	logger.InfoContext(WithTraceID(context.Background(), "abc"), "loaded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loader", entry["component"])
	assert.Equal(t, "abc", entry["trace_id"])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, config.LoggingConfig{Level: "info", Format: "text"})
	logger.Info("plain", "rows", 3)

	out := buf.String()
	assert.True(t, strings.Contains(out, "msg=plain"), out)
	assert.True(t, strings.Contains(out, "rows=3"), out)
}

func TestParseLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, config.LoggingConfig{Level: "warn"})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLogLevel_Names(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestTraceHandler_PrefersSpanContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, config.LoggingConfig{Level: "info"})

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(WithTraceID(context.Background(), "explicit"), sc)
	logger.InfoContext(ctx, "in span")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, sc.TraceID().String(), entry["trace_id"])
	assert.Equal(t, sc.SpanID().String(), entry["span_id"])
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing trace ID is kept")
}
