// Package diag adapts resolver diagnostics to log/slog.
package diag

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"symres/internal/env"
)

// SlogSink writes diagnostics as structured log records.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger.With(slog.String("component", "resolver"))}
}

func (s *SlogSink) Report(severity env.Severity, msg string, err error) {
	attrs := []slog.Attr{slog.String("severity", severity.String())}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(context.Background(), levelOf(severity), msg, attrs...)
}

func levelOf(s env.Severity) slog.Level {
	switch s {
	case env.SeverityError:
		return slog.LevelError
	case env.SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}

// NewLogger builds a slog logger from textual settings. Unknown levels fall
// back to info and unknown formats to text.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Entry is one recorded report.
type Entry struct {
	Severity env.Severity
	Message  string
	Err      error
}

// Recorder keeps reports in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Report(severity env.Severity, msg string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Severity: severity, Message: msg, Err: err})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns the number of reports at or above severity.
func (r *Recorder) Count(min env.Severity) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Severity >= min {
			n++
		}
	}
	return n
}
