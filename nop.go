package extlog

import (
	"context"
	"log/slog"
)

// discard drops every record before the fields are built, so a
// ContextHandler wrapping it never runs its injectors.
type discard struct{}

var _ slog.Handler = discard{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

// NewNopHandler returns a slog handler that discards all records.
func NewNopHandler() slog.Handler {
	return discard{}
}

// NewNopSlogger returns a slog logger that discards all records.
func NewNopSlogger() *slog.Logger {
	return slog.New(discard{})
}

// NewNopLogger returns a nil *Logger, which discards all records.
// Injectors registered on it are never called.
func NewNopLogger() *Logger {
	return nil
}
