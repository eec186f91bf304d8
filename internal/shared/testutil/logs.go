// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log call with its attributes flattened.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record in memory.
// Handlers derived with WithAttrs share the same record list.
type LogRecorder struct {
	mu      *sync.Mutex
	records *[]LogRecord
	attrs   []slog.Attr
	group   string
}

// NewTestLogger returns a debug level logger and the recorder behind it.
func NewTestLogger(t *testing.T) (*slog.Logger, *LogRecorder) {
	t.Helper()
	rec := &LogRecorder{mu: &sync.Mutex{}, records: &[]LogRecord{}}
	return slog.New(rec), rec
}

// Enabled implements slog.Handler
func (h *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.key(a.Key)] = a.Value.Resolve().Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler
func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	return &clone
}

// WithGroup implements slog.Handler
func (h *LogRecorder) WithGroup(name string) slog.Handler {
	clone := *h
	clone.group = h.key(name)
	return &clone
}

func (h *LogRecorder) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// Records returns a copy of the captured records.
func (h *LogRecorder) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LogRecord(nil), *h.records...)
}

// Find returns the first record whose message contains msg.
func (h *LogRecorder) Find(msg string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, msg) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// AssertLogged fails the test unless a record at level contains msg.
func AssertLogged(t *testing.T, h *LogRecorder, level slog.Level, msg string) LogRecord {
	t.Helper()
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, msg) {
			return r
		}
	}
	t.Errorf("expected %s log containing %q, got %d records", level, msg, len(h.Records()))
	return LogRecord{}
}

// AssertNoErrors fails the test if anything was logged at error level.
func AssertNoErrors(t *testing.T, h *LogRecorder) {
	t.Helper()
	for _, r := range h.Records() {
		if r.Level >= slog.LevelError {
			t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
		}
	}
}
