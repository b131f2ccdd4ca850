// Package testutil provides shared test helpers: a slog logger bound to the
// running test and small dataset fixtures.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes through t.Log, so
// output shows up only for failing tests or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	logger, _ := NewRecordingLogger(t)
	return logger
}

// LogRecord is one captured log call.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// LogRecorder keeps every record a logger emitted, in order.
type LogRecorder struct {
	mu      sync.Mutex
	records []LogRecord
}

// Records returns the captured records at or above level.
func (r *LogRecorder) Records(level slog.Level) []LogRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []LogRecord
	for _, rec := range r.records {
		if rec.Level >= level {
			out = append(out, rec)
		}
	}
	return out
}

// Messages returns the messages logged at or above level.
func (r *LogRecorder) Messages(level slog.Level) []string {
	recs := r.Records(level)
	msgs := make([]string, len(recs))
	for i, rec := range recs {
		msgs[i] = rec.Message
	}
	return msgs
}

// NewRecordingLogger returns a logger that writes through t.Log and also
// captures each record for assertions.
func NewRecordingLogger(t testing.TB) (*slog.Logger, *LogRecorder) {
	t.Helper()
	rec := &LogRecorder{}
	text := slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(&recordingHandler{Handler: text, rec: rec}), rec
}

type recordingHandler struct {
	slog.Handler
	rec   *LogRecorder
	attrs []slog.Attr
}

func (h *recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]string, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})

	h.rec.mu.Lock()
	h.rec.records = append(h.rec.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.rec.mu.Unlock()

	return h.Handler.Handle(ctx, r)
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingHandler{
		Handler: h.Handler.WithAttrs(attrs),
		rec:     h.rec,
		attrs:   append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	return &recordingHandler{Handler: h.Handler.WithGroup(name), rec: h.rec, attrs: h.attrs}
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
