package extlog

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Keys of the request derived fields. They are present on every record,
// set to "" when the record was not emitted while handling a request.
const (
	HTTPPathKey       = "http_path"
	HTTPURLKey        = "http_url"
	HTTPMethodKey     = "http_method"
	HTTPRemoteAddrKey = "http_remote_addr"
	HTTPUserAgentKey  = "http_user_agent"
)

var httpKeys = [...]string{
	HTTPPathKey,
	HTTPURLKey,
	HTTPMethodKey,
	HTTPRemoteAddrKey,
	HTTPUserAgentKey,
}

// RequestIDHeader is read by Middleware when chi's RequestID middleware
// has not assigned an id.
const RequestIDHeader = "X-Request-Id"

// RequestContext is the handle to the request being processed.
type RequestContext struct {
	Request *http.Request
	// ID identifies the request, see Middleware.
	ID string
}

// LookupFunc resolves the active request from a context, nil if there is none.
type LookupFunc func(context.Context) *RequestContext

type requestKey struct{}

// WithRequest returns a copy of ctx carrying rc.
func WithRequest(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestKey{}, rc)
}

// RequestFromContext returns the request bound by WithRequest, or nil.
// It is the default LookupFunc.
func RequestFromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}
	rc, _ := ctx.Value(requestKey{}).(*RequestContext)
	return rc
}

// Middleware binds every request to its context so records logged with
// the request context carry the http fields.
//
// The request id is taken from chi's RequestID middleware if it ran before,
// then from the X-Request-Id header, and generated otherwise.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := &RequestContext{
			Request: r,
			ID:      requestID(r),
		}
		next.ServeHTTP(w, r.WithContext(WithRequest(r.Context(), rc)))
	})
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

// requestFields returns the http fields for rc, all empty if rc is nil.
func requestFields(rc *RequestContext) Fields {
	fields := make(Fields, len(httpKeys))
	for _, key := range httpKeys {
		fields[key] = ""
	}
	if rc == nil || rc.Request == nil {
		return fields
	}
	r := rc.Request
	if r.URL != nil {
		fields[HTTPPathKey] = r.URL.Path
	}
	fields[HTTPURLKey] = absoluteURL(r)
	fields[HTTPMethodKey] = r.Method
	fields[HTTPRemoteAddrKey] = remoteHost(r.RemoteAddr)
	fields[HTTPUserAgentKey] = r.Header.Get("User-Agent")
	return fields
}

func absoluteURL(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// remoteHost strips the port, RemoteAddr is returned as is if it has none.
func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
