package extlog

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"

	"github.com/icefed/extlog/buffer"
)

// Handler implements the slog.Handler interface, rendering every record
// with a TemplateFormatter.
//
// Attributes become extra fields of the record, keys of grouped attributes
// are joined with dots. The fields added by ContextHandler always stay at
// the top level, so templates can rely on them.
type Handler struct {
	c *Config
	// the writer is a terminal file descriptor.
	isTerm bool

	groups []string
	// fields added with WithAttrs
	preset map[string]any
}

var _ slog.Handler = (*Handler)(nil)

// Config the configuration for the Handler.
type Config struct {
	// Level and ReplaceAttr apply as documented by slog. Source fields are
	// only set if AddSource is true.
	slog.HandlerOptions

	// Writer is the writer to use. If nil, os.Stderr is used.
	Writer io.Writer

	// Formatter renders the records. If nil, DefaultTemplate is used.
	Formatter *TemplateFormatter

	// Name is exposed to templates as name.
	Name string
}

func (c *Config) copy() *Config {
	newConfig := *c
	return &newConfig
}

// DefaultTemplate is the template used by handlers without a formatter.
const DefaultTemplate = `{{.asctime}} {{.levelcolor}}
{{- with .source}} {{.}}{{end}} {{.message}}
{{- if .http_url}} [{{.http_method}} {{.http_url}}]{{end}}
{{- if .exc_info}}
{{.exc_info.Traceback}}
{{- end}}`

var defaultFormatter, _ = NewTemplateFormatter(NewEnv(nil), FormatterConfig{
	Source: DefaultTemplate,
})

var defaultConfig = Config{
	HandlerOptions: slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelInfo,
	},
	// use stderr as default writer
	Writer:    os.Stderr,
	Formatter: defaultFormatter,
}

// NewHandler creates a handler that writes records rendered by a template.
// If config is nil, a default configuration is used.
func NewHandler(config *Config) *Handler {
	var c Config
	if config == nil {
		c = defaultConfig
	} else {
		c = *config
		if c.Writer == nil {
			c.Writer = defaultConfig.Writer
		}
		if c.Formatter == nil {
			c.Formatter = defaultConfig.Formatter
		}
	}

	return &Handler{
		c:      &c,
		isTerm: isTerminal(c.Writer),
	}
}

// Enabled reports whether the handler handles records at the given level. The handler ignores records whose level is lower.
// https://pkg.go.dev/log/slog#Handler
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	if h.c.Level == nil {
		return level >= defaultConfig.Level.Level()
	}
	return level >= h.c.Level.Level()
}

// WithOptions return a new handler with the given options.
// Options will override the hander's config.
func (h *Handler) WithOptions(opts ...Option) *Handler {
	newHandler := h.clone()
	for i := range opts {
		opts[i].apply(newHandler.c)
	}
	if newHandler.c.Writer == nil {
		newHandler.c.Writer = defaultConfig.Writer
	}
	if newHandler.c.Formatter == nil {
		newHandler.c.Formatter = defaultConfig.Formatter
	}
	newHandler.isTerm = isTerminal(newHandler.c.Writer)
	return newHandler
}

// Handle renders r and writes it on a line of its own.
// https://pkg.go.dev/log/slog#Handler
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	s, err := h.c.Formatter.Format(h.record(r))
	if err != nil {
		return err
	}

	buf := buffer.New()
	defer buf.Free()
	buf.WriteString(s)
	if last := buf.LastByte(); last == nil || *last != '\n' {
		buf.WriteByte('\n')
	}
	_, err = h.c.Writer.Write(buf.Bytes())
	return err
}

// record converts r for the formatter.
func (h *Handler) record(r slog.Record) *Record {
	rec := &Record{
		Name:     h.c.Name,
		Time:     r.Time,
		Level:    r.Level,
		Msg:      r.Message,
		Extra:    maps.Clone(h.preset),
		terminal: h.isTerm,
	}
	if rec.Extra == nil {
		rec.Extra = make(map[string]any, r.NumAttrs())
	}
	if h.c.AddSource {
		rec.PC = r.PC
	}
	r.Attrs(func(a slog.Attr) bool {
		h.addAttr(rec, h.groups, a)
		return true
	})
	return rec
}

func (h *Handler) addAttr(rec *Record, groups []string, a slog.Attr) {
	if k := a.Value.Kind(); k == slog.KindAny || k == slog.KindLogValuer {
		switch v := a.Value.Any().(type) {
		case Fields:
			for key, value := range v {
				rec.Extra[key] = value
			}
			return
		case *Capture:
			rec.ExcInfo = v
			return
		case messageArgs:
			rec.Args = v
			return
		}
	}

	if h.c.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a.Value = a.Value.Resolve()
		a = h.c.ReplaceAttr(groups, a)
	}
	a.Value = a.Value.Resolve()
	// ignore empty attrs
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return
		}
		// If a group's key is empty, inline the group's Attrs.
		if a.Key != "" {
			groups = append(slices.Clip(groups), a.Key)
		}
		for i := range attrs {
			h.addAttr(rec, groups, attrs[i])
		}
		return
	}
	if a.Key == "" {
		return
	}
	rec.Extra[joinKey(groups, a.Key)] = a.Value.Any()
}

func joinKey(groups []string, key string) string {
	if len(groups) == 0 {
		return key
	}
	return strings.Join(groups, ".") + "." + key
}

// WithAttrs implements the slog.Handler WithAttrs method.
// https://pkg.go.dev/log/slog#Handler
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	newHandler := h.clone()
	rec := &Record{Extra: make(map[string]any, len(attrs))}
	for i := range attrs {
		newHandler.addAttr(rec, newHandler.groups, attrs[i])
	}
	if newHandler.preset == nil {
		newHandler.preset = make(map[string]any, len(rec.Extra))
	}
	maps.Copy(newHandler.preset, rec.Extra)
	return newHandler
}

// WithGroup implements the slog.Handler WithGroup method.
// https://pkg.go.dev/log/slog#Handler
func (h *Handler) WithGroup(name string) slog.Handler {
	newHandler := h.clone()
	if name == "" {
		return newHandler
	}
	newHandler.groups = append(newHandler.groups, name)
	return newHandler
}

func (h *Handler) clone() *Handler {
	return &Handler{
		c:      h.c.copy(),
		isTerm: h.isTerm,
		groups: slices.Clip(h.groups),
		preset: maps.Clone(h.preset),
	}
}

// isTerminal returns true if w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
