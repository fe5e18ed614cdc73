package extlog

import (
	"context"
	"log/slog"
)

// ContextHandler is a slog.Handler that adds the request fields and the
// output of the registered injectors to every record before passing it to
// the wrapped handler.
type ContextHandler struct {
	next   slog.Handler
	lookup LookupFunc
	inj    *injectors
}

var _ slog.Handler = (*ContextHandler)(nil)

// NewContextHandler wraps next. RequestFromContext is used if lookup is nil.
func NewContextHandler(next slog.Handler, lookup LookupFunc) *ContextHandler {
	if next == nil {
		next = NewHandler(nil)
	}
	if lookup == nil {
		lookup = RequestFromContext
	}
	return &ContextHandler{
		next:   next,
		lookup: lookup,
		inj:    &injectors{},
	}
}

// Inject registers f, injectors run in the order they were registered.
// f is returned unchanged.
func (h *ContextHandler) Inject(f Injector) Injector {
	h.inj.add(f)
	return f
}

// Next returns the wrapped handler.
func (h *ContextHandler) Next() slog.Handler {
	return h.next
}

// Enabled reports whether the wrapped handler handles records at the given level.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Fields computes the extra fields for a record logged with ctx.
func (h *ContextHandler) Fields(ctx context.Context) Fields {
	if ctx == nil {
		ctx = context.Background()
	}
	rc := h.lookup(ctx)
	fields := requestFields(rc)
	for _, f := range h.inj.snapshot() {
		f(fields, rc)
	}
	return fields
}

// Handle adds the extra fields to r and calls the wrapped handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := h.Fields(ctx)
	r = r.Clone()
	r.AddAttrs(slog.Any("", fields))
	return h.next.Handle(ctx, r)
}

// WithAttrs implements the slog.Handler WithAttrs method.
// The returned handler shares the injectors of h.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.derive(h.next.WithAttrs(attrs))
}

// WithGroup implements the slog.Handler WithGroup method.
// The returned handler shares the injectors of h.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.derive(h.next.WithGroup(name))
}

func (h *ContextHandler) derive(next slog.Handler) *ContextHandler {
	return &ContextHandler{
		next:   next,
		lookup: h.lookup,
		inj:    h.inj,
	}
}

// defersFormatting reports whether printf style messages can be handed to
// the wrapped handler unformatted.
func (h *ContextHandler) defersFormatting() bool {
	_, ok := h.next.(*Handler)
	return ok
}
