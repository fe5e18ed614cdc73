package extlog

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// Logger adds the request fields and the injected fields to every record,
// see ContextHandler. Methods without a context argument log with
// context.Background, so their records carry empty http fields.
//
// A nil *Logger discards all records.
type Logger struct {
	h *ContextHandler

	callerSkip int
}

// New creates a new Logger writing to h. h is wrapped in a ContextHandler
// unless it already is one. NewHandler(nil) will be used if h is nil.
func New(h slog.Handler, opts ...LoggerOption) *Logger {
	var c loggerConfig
	for _, opt := range opts {
		opt.apply(&c)
	}

	ch, ok := h.(*ContextHandler)
	if !ok {
		ch = NewContextHandler(h, c.lookup)
	} else if c.lookup != nil {
		ch = &ContextHandler{next: ch.next, lookup: c.lookup, inj: ch.inj}
	}
	for _, f := range c.injectors {
		ch.Inject(f)
	}
	return &Logger{h: ch}
}

func (l *Logger) clone() *Logger {
	return &Logger{
		h:          l.h,
		callerSkip: l.callerSkip,
	}
}

// Inject registers an injector and returns it unchanged. It can be used
// from package level var declarations:
//
//	var _ = log.Inject(func(fields extlog.Fields, rc *extlog.RequestContext) {
//		fields["app_user"] = "anonymous"
//		if rc != nil {
//			if u, ok := userFrom(rc.Request); ok {
//				fields["app_user"] = u.Name
//			}
//		}
//	})
//
// Injectors cannot be removed. Loggers derived with With or WithGroup
// share the injectors of their parent.
func (l *Logger) Inject(f Injector) Injector {
	if l == nil {
		return f
	}
	return l.h.Inject(f)
}

// Enabled reports whether the handler handles records at the given level.
func (l *Logger) Enabled(ctx context.Context, level slog.Level) bool {
	if l == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return l.h.Enabled(ctx, level)
}

// With returns a new logger with the given arguments.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return l
	}
	newLogger := l.clone()
	newLogger.h = l.h.WithAttrs(argsToAttrs(args...)).(*ContextHandler)
	return newLogger
}

// WithGroup returns a new logger with the given group name.
func (l *Logger) WithGroup(name string) *Logger {
	if l == nil {
		return l
	}
	newLogger := l.clone()
	newLogger.h = l.h.WithGroup(name).(*ContextHandler)
	return newLogger
}

// WithCallerSkip returns a new logger with the given caller skip.
// argument 'skip' will be added to the caller skip in the logger, which is passed
// as the first parameter 'skip' when calling runtime.Callers to get the source's pc.
func (l *Logger) WithCallerSkip(skip int) *Logger {
	if l == nil {
		return l
	}
	newLogger := l.clone()
	newLogger.callerSkip += skip
	return newLogger
}

var badKey = "!BADKEY"

func argsToAttrs(args ...any) []slog.Attr {
	var (
		attrs     []slog.Attr
		totalArgs = len(args)
	)
	for i := 0; i < totalArgs; i++ {
		switch arg := args[i].(type) {
		case string:
			if i == totalArgs-1 {
				attrs = append(attrs, slog.String(badKey, arg))
				return attrs
			}
			attrs = append(attrs, slog.Any(arg, args[i+1]))
			i++
		case slog.Attr:
			attrs = append(attrs, arg)
		default:
			attrs = append(attrs, slog.Any(badKey, arg))
		}
	}
	return attrs
}

// Handler returns the handler, any slog API can be used through it.
func (l *Logger) Handler() *ContextHandler {
	if l == nil {
		return nil
	}
	return l.h
}

// Slog returns a slog.Logger sharing the handler and injectors of l.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return NewNopSlogger()
	}
	return slog.New(l.h)
}

// callerPC returns the pc of the log call, skip counts the frames between
// the public method and callerPC.
func (l *Logger) callerPC(skip int) uintptr {
	var pcs [1]uintptr
	// skip runtime.Callers, callerPC, its callers and l.callerSkip
	runtime.Callers(3+skip+l.callerSkip, pcs[:])
	return pcs[0]
}

func (l *Logger) handle(ctx context.Context, r slog.Record) {
	if ctx == nil {
		ctx = context.Background()
	}
	// whether error needs to be handled
	_ = l.h.Handle(ctx, r)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, l.callerPC(1))
	r.Add(args...)
	l.handle(ctx, r)
}

func (l *Logger) logAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if !l.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, l.callerPC(1))
	r.AddAttrs(attrs...)
	l.handle(ctx, r)
}

// logf hands format and args over to Handler, which formats the message
// when rendering. Other handlers get the formatted message.
func (l *Logger) logf(ctx context.Context, level slog.Level, format string, args ...any) {
	if !l.Enabled(ctx, level) {
		return
	}
	msg := format
	deferred := len(args) > 0 && l.h.defersFormatting()
	if len(args) > 0 && !deferred {
		msg = formatMessage(format, args)
	}
	r := slog.NewRecord(time.Now(), level, msg, l.callerPC(1))
	if deferred {
		r.AddAttrs(slog.Any(messageArgsKey, messageArgs(args)))
	}
	l.handle(ctx, r)
}

// logExc logs err with the stack of the caller at the error level.
func (l *Logger) logExc(ctx context.Context, err error, msg string, args ...any) {
	if !l.Enabled(ctx, slog.LevelError) {
		return
	}
	r := slog.NewRecord(time.Now(), slog.LevelError, msg, l.callerPC(1))
	r.Add(args...)
	if c := CaptureError(err, 2+l.callerSkip); c != nil {
		r.AddAttrs(slog.Any(ExcInfoKey, c))
	}
	l.handle(ctx, r)
}

// Log logs at the given level. Log follows the rules of slog.Logger.Log,
// args can be slog.Attr or will be converted to slog.Attr in pairs.
func (l *Logger) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	l.log(ctx, level, msg, args...)
}

// Logf logs at the given level, the message is formatted as
// fmt.Sprintf does, %s accepts values of any type.
func (l *Logger) Logf(ctx context.Context, level slog.Level, format string, args ...any) {
	l.logf(ctx, level, format, args...)
}

// LogAttrs logs at the given level with the given attrs.
func (l *Logger) LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	l.logAttrs(ctx, level, msg, attrs...)
}

// Debug logs at the debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(nil, slog.LevelDebug, msg, args...)
}

// Debugf logs at the debug level, fmt.Sprintf is used to format.
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(nil, slog.LevelDebug, format, args...)
}

// DebugContext logs at the debug level with context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

// DebugContextf logs at the debug level with context, fmt.Sprintf is used to format.
func (l *Logger) DebugContextf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, slog.LevelDebug, format, args...)
}

// Info logs at the info level.
func (l *Logger) Info(msg string, args ...any) {
	l.log(nil, slog.LevelInfo, msg, args...)
}

// Infof logs at the info level, fmt.Sprintf is used to format.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(nil, slog.LevelInfo, format, args...)
}

// InfoContext logs at the info level with context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

// InfoContextf logs at the info level with context, fmt.Sprintf is used to format.
func (l *Logger) InfoContextf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, slog.LevelInfo, format, args...)
}

// Warn logs at the warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(nil, slog.LevelWarn, msg, args...)
}

// Warnf logs at the warn level, fmt.Sprintf is used to format.
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(nil, slog.LevelWarn, format, args...)
}

// WarnContext logs at the warn level with context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

// WarnContextf logs at the warn level with context, fmt.Sprintf is used to format.
func (l *Logger) WarnContextf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, slog.LevelWarn, format, args...)
}

// Error logs at the error level.
func (l *Logger) Error(msg string, args ...any) {
	l.log(nil, slog.LevelError, msg, args...)
}

// Errorf logs at the error level, fmt.Sprintf is used to format.
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(nil, slog.LevelError, format, args...)
}

// ErrorContext logs at the error level with context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, args...)
}

// ErrorContextf logs at the error level with context, fmt.Sprintf is used to format.
func (l *Logger) ErrorContextf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, slog.LevelError, format, args...)
}

// Critical logs at the critical level.
func (l *Logger) Critical(msg string, args ...any) {
	l.log(nil, LevelCritical, msg, args...)
}

// Criticalf logs at the critical level, fmt.Sprintf is used to format.
func (l *Logger) Criticalf(format string, args ...any) {
	l.logf(nil, LevelCritical, format, args...)
}

// CriticalContext logs at the critical level with context.
func (l *Logger) CriticalContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelCritical, msg, args...)
}

// CriticalContextf logs at the critical level with context, fmt.Sprintf is used to format.
func (l *Logger) CriticalContextf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, LevelCritical, format, args...)
}

// Exception logs err at the error level along with the stack of the caller,
// templates see it as exc_info. A nil err logs a plain error record.
func (l *Logger) Exception(err error, msg string, args ...any) {
	l.logExc(nil, err, msg, args...)
}

// ExceptionContext is Exception with context.
func (l *Logger) ExceptionContext(ctx context.Context, err error, msg string, args ...any) {
	l.logExc(ctx, err, msg, args...)
}

// Recover logs a panic of the calling goroutine as an exception and stops
// it. It must be called directly by defer:
//
//	defer log.Recover(ctx, "worker failed")
func (l *Logger) Recover(ctx context.Context, msg string, args ...any) {
	v := recover()
	if v == nil {
		return
	}
	err, ok := v.(error)
	if !ok {
		err = &PanicError{Value: v}
	}
	l.logExc(ctx, err, msg, args...)
}
