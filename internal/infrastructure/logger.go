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

	"ricecast/internal/config"
)

// Process-wide logger, set once by InitializeLogger.
var (
	appLogger     *slog.Logger
	appLoggerOnce sync.Once

	logFileMu sync.Mutex
	logFile   *os.File
)

type contextKey string

// TraceIDContextKey carries the per-request (or per-command) trace id.
const TraceIDContextKey contextKey = "trace_id"

// InitializeLogger builds the application logger from cfg and installs it as
// the slog default. Later calls return the first logger.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	appLoggerOnce.Do(func() {
		var w io.Writer
		w, err = logOutput(cfg)
		if err != nil {
			return
		}
		appLogger = slog.New(newTraceHandler(w, parseLogLevel(cfg.Level), true))
		slog.SetDefault(appLogger)
	})
	return appLogger, err
}

// GetLogger returns the application logger, or slog.Default before
// InitializeLogger has run.
func GetLogger() *slog.Logger {
	if appLogger == nil {
		return slog.Default()
	}
	return appLogger
}

// NewLogger builds a standalone logger without touching the global one.
// Command line tools and tests use it to log at a chosen level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(newTraceHandler(w, parseLogLevel(level), false))
}

// logOutput resolves the configured destination. Output is either "console"
// (stdout) or "file"; config validation rejects anything else.
func logOutput(cfg config.LoggingConfig) (io.Writer, error) {
	if !strings.EqualFold(cfg.Output, "file") {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logFileMu.Lock()
	logFile = f
	logFileMu.Unlock()
	return f, nil
}

// traceHandler stamps trace_id and span_id from the context onto each record.
type traceHandler struct {
	slog.Handler
}

func newTraceHandler(w io.Writer, level slog.Level, addSource bool) *traceHandler {
	return &traceHandler{Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: addSource,
		Level:     level,
	})}
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(slog.String("span_id", sc.SpanID().String()))
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
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return id
	}
	return ""
}

// CloseLogFile closes the log file opened for "file" output, if any.
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

// ResetLoggerForTesting drops the global logger so a test can initialize it again.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	appLogger = nil
	appLoggerOnce = sync.Once{}
}
