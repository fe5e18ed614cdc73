package extlog

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/maps"
)

// Fields holds the extra fields of a record, it is passed to every Injector
// which may add or overwrite keys.
type Fields map[string]any

// LogValue implements slog.LogValuer. Fields resolve to a group with an
// empty key, which handlers inline: http fields first, then the other keys
// in sorted order.
func (f Fields) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(f))
	for _, key := range httpKeys {
		if v, ok := f[key]; ok {
			attrs = append(attrs, slog.Any(key, v))
		}
	}
	for _, key := range f.extraKeys() {
		attrs = append(attrs, slog.Any(key, f[key]))
	}
	return slog.GroupValue(attrs...)
}

// extraKeys returns the sorted keys which are not http fields.
func (f Fields) extraKeys() []string {
	keys := maps.Keys(f)
	keys = slices.DeleteFunc(keys, func(k string) bool {
		return slices.Contains(httpKeys[:], k)
	})
	slices.Sort(keys)
	return keys
}

// Injector adds extra fields to a record. rc is nil if the record is not
// logged while handling a request.
//
// An injector should always set the keys it documents, even to an empty
// value, otherwise templates referencing them fail for records where the
// key is missing. A panicking injector aborts the logging call.
type Injector func(fields Fields, rc *RequestContext)

// injectors is an append only list of Injector, shared by all the handlers
// derived from one ContextHandler.
type injectors struct {
	mu   sync.Mutex
	list atomic.Pointer[[]Injector]
}

func (in *injectors) add(f Injector) {
	in.mu.Lock()
	defer in.mu.Unlock()
	var list []Injector
	if p := in.list.Load(); p != nil {
		list = slices.Clone(*p)
	}
	list = append(list, f)
	in.list.Store(&list)
}

// snapshot returns the registered injectors, callers must not modify it.
func (in *injectors) snapshot() []Injector {
	if p := in.list.Load(); p != nil {
		return *p
	}
	return nil
}

// Keys set by the built-in injectors.
const (
	RequestIDKey = "request_id"
	TraceIDKey   = "trace_id"
	SpanIDKey    = "span_id"
)

// RequestIDInjector sets request_id to the id assigned by Middleware.
func RequestIDInjector(fields Fields, rc *RequestContext) {
	fields[RequestIDKey] = ""
	if rc != nil {
		fields[RequestIDKey] = rc.ID
	}
}

// TraceInjector sets trace_id and span_id from the OpenTelemetry span
// carried by the request's context.
func TraceInjector(fields Fields, rc *RequestContext) {
	fields[TraceIDKey] = ""
	fields[SpanIDKey] = ""
	if rc == nil || rc.Request == nil {
		return
	}
	sc := trace.SpanContextFromContext(rc.Request.Context())
	if !sc.IsValid() {
		return
	}
	fields[TraceIDKey] = sc.TraceID().String()
	fields[SpanIDKey] = sc.SpanID().String()
}
