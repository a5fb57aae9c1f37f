package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"crpdash/internal/config"
)

type contextKey string

// TraceIDContextKey carries an explicit trace ID for work outside a span
const TraceIDContextKey contextKey = "trace_id"

var (
	loggerOnce sync.Once
	appLogger  *slog.Logger

	logFileMu sync.Mutex
	logFile   *os.File
)

// InitializeLogger builds the process logger from cfg and makes it the slog
// default. Later calls return the first logger unchanged.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	loggerOnce.Do(func() {
		appLogger, err = NewLogger(cfg)
		if appLogger != nil {
			slog.SetDefault(appLogger)
		}
	})
	return appLogger, err
}

// GetLogger returns the process logger, or slog.Default before
// InitializeLogger ran.
func GetLogger() *slog.Logger {
	if appLogger == nil {
		return slog.Default()
	}
	return appLogger
}

// NewLogger builds a logger for cfg without installing it
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	return newLoggerTo(w, cfg), nil
}

// NewLoggerTo builds a logger writing to w, ignoring cfg.Output. Command-line
// tools use it to keep logs on stderr.
func NewLoggerTo(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	return newLoggerTo(w, cfg)
}

func newLoggerTo(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     parseLogLevel(cfg.Level),
	}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(&traceHandler{Handler: slog.NewTextHandler(w, opts)})
	}
	return slog.New(&traceHandler{Handler: slog.NewJSONHandler(w, opts)})
}

// openOutput resolves Logging.Output: console (default), file or both
func openOutput(cfg config.LoggingConfig) (io.Writer, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}

	logFileMu.Lock()
	logFile = f
	logFileMu.Unlock()

	if output == "both" {
		return io.MultiWriter(os.Stdout, f), nil
	}
	return f, nil
}

// CloseLogFile flushes and closes the log file opened by NewLogger, if any
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting drops the process logger so tests can initialize it again
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	appLogger = nil
	loggerOnce = sync.Once{}
}

// traceHandler adds trace_id to every record logged with a context. The
// active OTel span wins over an explicit ID from WithTraceID.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()))
	} else if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithTraceID stores an explicit trace ID in ctx
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID returns the explicit trace ID stored in ctx, or ""
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(TraceIDContextKey).(string)
	return id
}
