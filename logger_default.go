package extlog

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New(NewHandler(nil)))
}

// SetDefault sets the default logger. If l is nil, the default logger is not changed.
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultLogger.Store(l)
}

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// Inject calls Logger.Inject on the default logger.
func Inject(f Injector) Injector {
	return Default().Inject(f)
}

// With calls Logger.With on the default logger.
func With(args ...any) *Logger {
	return Default().With(args...)
}

// Log calls Logger.Log on the default logger.
func Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	Default().WithCallerSkip(1).Log(ctx, level, msg, args...)
}

// Logf calls Logger.Logf on the default logger.
func Logf(ctx context.Context, level slog.Level, format string, args ...any) {
	Default().WithCallerSkip(1).Logf(ctx, level, format, args...)
}

// Debug calls Logger.Debug on the default logger.
func Debug(msg string, args ...any) {
	Default().WithCallerSkip(1).Debug(msg, args...)
}

// DebugContext calls Logger.DebugContext on the default logger.
func DebugContext(ctx context.Context, msg string, args ...any) {
	Default().WithCallerSkip(1).DebugContext(ctx, msg, args...)
}

// Info calls Logger.Info on the default logger.
func Info(msg string, args ...any) {
	Default().WithCallerSkip(1).Info(msg, args...)
}

// InfoContext calls Logger.InfoContext on the default logger.
func InfoContext(ctx context.Context, msg string, args ...any) {
	Default().WithCallerSkip(1).InfoContext(ctx, msg, args...)
}

// Warn calls Logger.Warn on the default logger.
func Warn(msg string, args ...any) {
	Default().WithCallerSkip(1).Warn(msg, args...)
}

// WarnContext calls Logger.WarnContext on the default logger.
func WarnContext(ctx context.Context, msg string, args ...any) {
	Default().WithCallerSkip(1).WarnContext(ctx, msg, args...)
}

// Error calls Logger.Error on the default logger.
func Error(msg string, args ...any) {
	Default().WithCallerSkip(1).Error(msg, args...)
}

// ErrorContext calls Logger.ErrorContext on the default logger.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	Default().WithCallerSkip(1).ErrorContext(ctx, msg, args...)
}

// Critical calls Logger.Critical on the default logger.
func Critical(msg string, args ...any) {
	Default().WithCallerSkip(1).Critical(msg, args...)
}

// CriticalContext calls Logger.CriticalContext on the default logger.
func CriticalContext(ctx context.Context, msg string, args ...any) {
	Default().WithCallerSkip(1).CriticalContext(ctx, msg, args...)
}

// ExceptionContext calls Logger.ExceptionContext on the default logger.
func ExceptionContext(ctx context.Context, err error, msg string, args ...any) {
	Default().WithCallerSkip(1).ExceptionContext(ctx, err, msg, args...)
}
