package extlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, source string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	return New(newTestHandler(t, buf, source, WithAddSource(true))), buf
}

func TestLoggerHTTPFields(t *testing.T) {
	l, buf := newTestLogger(t, "{{.http_path}}|{{.http_url}}|{{.http_method}}|{{.http_remote_addr}}|{{.http_user_agent}}")

	check := func(expected string) {
		t.Helper()
		got := buf.String()
		// Remove the trailing newline
		got = got[:len(got)-1]
		if got != expected {
			t.Errorf("got %q, want %q", got, expected)
		}
		buf.Reset()
	}

	l.Info("background")
	check("||||")
	l.InfoContext(context.Background(), "background")
	check("||||")
	l.InfoContext(nil, "nil context")
	check("||||")
	l.WarnContext(requestContext("http://example.com/index"), "request")
	check("/index|http://example.com/index|GET|127.0.0.1|curl/8.0")
}

func TestLoggerConditionalTemplate(t *testing.T) {
	l, buf := newTestLogger(t, "{{ .message }}{{ if .http_url }} [{{ .http_url }}]{{ end }}")

	l.InfoContext(requestContext("http://x/y"), "hello")
	if got := buf.String(); got != "hello [http://x/y]\n" {
		t.Errorf("got %q, want %q", got, "hello [http://x/y]\n")
	}
	buf.Reset()

	l.Info("hello")
	if got := buf.String(); got != "hello\n" {
		t.Errorf("got %q, want %q", got, "hello\n")
	}
}

func TestLoggerPrintf(t *testing.T) {
	l, buf := newTestLogger(t, "{{.message}}|{{.msg}}|{{len .args}}")

	// %s takes any value, formats are variables to keep vet quiet
	format := "value=%s"
	l.Infof(format, 42)
	if got := buf.String(); got != "value=42|value=%s|1\n" {
		t.Errorf("got %q, want %q", got, "value=42|value=%s|1\n")
	}
	buf.Reset()

	format = "100%"
	l.Warnf(format)
	if got := buf.String(); got != "100%|100%|0\n" {
		t.Errorf("got %q, want %q", got, "100%|100%|0\n")
	}

	// other handlers get the formatted message
	var jbuf bytes.Buffer
	jl := New(slog.NewJSONHandler(&jbuf, nil))
	format = "value=%s %d"
	jl.Errorf(format, 42, 7)
	var m map[string]any
	if err := json.Unmarshal(jbuf.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m["msg"] != "value=42 7" {
		t.Errorf("got %v, want %v", m["msg"], "value=42 7")
	}
	if _, ok := m[messageArgsKey]; ok {
		t.Errorf("message args leaked: %v", m)
	}
}

func TestLoggerLevels(t *testing.T) {
	l, buf := newTestLogger(t, "{{.levelname}} {{.message}}")
	ctx := context.Background()

	l.Debug("a")
	l.Debugf("%s", "b")
	l.DebugContext(ctx, "c")
	l.DebugContextf(ctx, "%s", "d")
	l.Info("a")
	l.Infof("%s", "b")
	l.InfoContext(ctx, "c")
	l.InfoContextf(ctx, "%s", "d")
	l.Warn("a")
	l.Warnf("%s", "b")
	l.WarnContext(ctx, "c")
	l.WarnContextf(ctx, "%s", "d")
	l.Error("a")
	l.Errorf("%s", "b")
	l.ErrorContext(ctx, "c")
	l.ErrorContextf(ctx, "%s", "d")
	l.Critical("a")
	l.Criticalf("%s", "b")
	l.CriticalContext(ctx, "c")
	l.CriticalContextf(ctx, "%s", "d")
	l.Log(ctx, slog.LevelInfo+1, "a")
	l.Logf(ctx, slog.LevelInfo+1, "%s", "b")
	l.LogAttrs(ctx, slog.LevelInfo+1, "c", slog.Int("k", 1))

	var want strings.Builder
	for _, level := range []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"} {
		for _, msg := range []string{"a", "b", "c", "d"} {
			want.WriteString(level + " " + msg + "\n")
		}
	}
	want.WriteString("INFO+1 a\nINFO+1 b\nINFO+1 c\n")
	if got := buf.String(); got != want.String() {
		t.Errorf("got %q, want %q", got, want.String())
	}
}

func TestLoggerSource(t *testing.T) {
	l, buf := newTestLogger(t, "{{.filename}}:{{.funcName}}")

	l.Info("direct")
	testWithCallerSkip(l)
	want := "logger_test.go:TestLoggerSource\nlogger_test.go:TestLoggerSource\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func testWithCallerSkip(log *Logger) {
	log.WithCallerSkip(1).Info("skipped")
}

func TestLoggerWith(t *testing.T) {
	l, buf := newTestLogger(t, `{{.app}} {{index . "g.key"}} {{index . "!BADKEY"}}`)

	l.With("app", "shop", "badkey").WithGroup("g").Info("m", "key", "value")
	if got := buf.String(); got != "shop value badkey\n" {
		t.Errorf("got %q, want %q", got, "shop value badkey\n")
	}
}

func TestLoggerException(t *testing.T) {
	l, buf := newTestLogger(t, "{{.levelname}} {{.message}}{{if .exc_info}} | {{.exc_info.Exception}}{{end}}")

	err := errors.New("connection reset")
	l.ExceptionContext(requestContext("/"), err, "request failed")
	want := "ERROR request failed | *errors.errorString: connection reset\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	buf.Reset()

	l.Exception(nil, "no error")
	if got := buf.String(); got != "ERROR no error\n" {
		t.Errorf("got %q, want %q", got, "ERROR no error\n")
	}
}

func TestLoggerExceptionTraceback(t *testing.T) {
	l, buf := newTestLogger(t, "{{.exc_info.Traceback}}")

	l.Exception(errors.New("boom"), "failed")
	tb := buf.String()
	if !strings.HasPrefix(tb, "*errors.errorString: boom\n\n") {
		t.Errorf("got %q", tb)
	}
	lines := strings.Split(tb, "\n")
	if len(lines) < 4 || lines[2] != "github.com/icefed/extlog.TestLoggerExceptionTraceback" {
		t.Errorf("first frame is not the caller: %q", tb)
	}
}

func TestLoggerRecover(t *testing.T) {
	l, buf := newTestLogger(t, "{{.message}}: {{.exc_info.Exception}}")

	func() {
		defer l.Recover(context.Background(), "worker stopped")
		panic("out of range")
	}()
	if got := buf.String(); got != "worker stopped: panic: out of range\n" {
		t.Errorf("got %q, want %q", got, "worker stopped: panic: out of range\n")
	}
	buf.Reset()

	func() {
		defer l.Recover(context.Background(), "worker stopped")
		panic(errors.New("closed"))
	}()
	if got := buf.String(); got != "worker stopped: *errors.errorString: closed\n" {
		t.Errorf("got %q, want %q", got, "worker stopped: *errors.errorString: closed\n")
	}
	buf.Reset()

	func() {
		defer l.Recover(context.Background(), "worker stopped")
	}()
	if buf.Len() != 0 {
		t.Errorf("got %q, want no output", buf.String())
	}
}

func TestLoggerInject(t *testing.T) {
	l, buf := newTestLogger(t, "{{.request_id}} {{.tenant}}")

	got := l.Inject(RequestIDInjector)
	if reflect.ValueOf(got).Pointer() != reflect.ValueOf(RequestIDInjector).Pointer() {
		t.Error("Inject did not return its argument")
	}
	child := l.With("k", "v")
	l.Inject(func(fields Fields, rc *RequestContext) {
		fields["tenant"] = "acme"
	})

	child.InfoContext(requestContext("/"), "m")
	if got := buf.String(); got != "r1 acme\n" {
		t.Errorf("got %q, want %q", got, "r1 acme\n")
	}
}

func TestLoggerSlog(t *testing.T) {
	l, buf := newTestLogger(t, "{{.http_path}} {{.message}}")
	l.Inject(func(fields Fields, rc *RequestContext) {})

	l.Slog().InfoContext(requestContext("/slog"), "through slog")
	if got := buf.String(); got != "/slog through slog\n" {
		t.Errorf("got %q, want %q", got, "/slog through slog\n")
	}
}

func TestLoggerOptions(t *testing.T) {
	var buf bytes.Buffer
	lookup := func(context.Context) *RequestContext {
		return &RequestContext{ID: "fixed"}
	}
	l := New(newTestHandler(t, &buf, "{{.request_id}}"), WithLookup(lookup), WithInjectors(RequestIDInjector))
	l.Info("m")
	if got := buf.String(); got != "fixed\n" {
		t.Errorf("got %q, want %q", got, "fixed\n")
	}
	buf.Reset()

	// wrapping a ContextHandler keeps its injectors
	l2 := New(l.Handler(), WithLookup(RequestFromContext))
	l2.Info("m")
	if got := buf.String(); got != "\n" {
		t.Errorf("got %q, want %q", got, "\n")
	}
}

func TestDefaultLogger(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	l, buf := newTestLogger(t, "{{.levelname}} {{.funcName}} {{.message}}")
	SetDefault(l)
	SetDefault(nil)
	if Default() != l {
		t.Fatal("SetDefault(nil) changed the default logger")
	}

	ctx := context.Background()
	Debug("a")
	DebugContext(ctx, "b")
	Info("a")
	InfoContext(ctx, "b")
	Warn("a")
	WarnContext(ctx, "b")
	Error("a")
	ErrorContext(ctx, "b")
	Critical("a")
	CriticalContext(ctx, "b")
	Log(ctx, slog.LevelInfo, "c")
	Logf(ctx, slog.LevelInfo, "%s", "d")
	ExceptionContext(ctx, nil, "e")
	With("k", "v").Info("f")

	want := strings.Join([]string{
		"DEBUG TestDefaultLogger a",
		"DEBUG TestDefaultLogger b",
		"INFO TestDefaultLogger a",
		"INFO TestDefaultLogger b",
		"WARNING TestDefaultLogger a",
		"WARNING TestDefaultLogger b",
		"ERROR TestDefaultLogger a",
		"ERROR TestDefaultLogger b",
		"CRITICAL TestDefaultLogger a",
		"CRITICAL TestDefaultLogger b",
		"INFO TestDefaultLogger c",
		"INFO TestDefaultLogger d",
		"ERROR TestDefaultLogger e",
		"INFO TestDefaultLogger f",
	}, "\n") + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	f := Injector(func(fields Fields, rc *RequestContext) {})
	if reflect.ValueOf(Inject(f)).Pointer() != reflect.ValueOf(f).Pointer() {
		t.Error("Inject did not return its argument")
	}
}
