package extlog

import (
	"io"
	"log/slog"
)

// Option is the option for Handler.
type Option interface {
	apply(*Config)
}

type optionFunc struct {
	f func(*Config)
}

func (o optionFunc) apply(c *Config) {
	o.f(c)
}

// WithAddSource enables the source fields.
func WithAddSource(addSource bool) Option {
	return optionFunc{func(c *Config) {
		c.AddSource = addSource
	}}
}

// WithLevel sets the level.
func WithLevel(level slog.Leveler) Option {
	return optionFunc{func(c *Config) {
		c.Level = level
	}}
}

// WithReplaceAttr sets the replaceAttr.
func WithReplaceAttr(replaceAttr func(groups []string, a slog.Attr) slog.Attr) Option {
	return optionFunc{func(c *Config) {
		c.ReplaceAttr = replaceAttr
	}}
}

// WithWriter sets the writer.
func WithWriter(w io.Writer) Option {
	return optionFunc{func(c *Config) {
		c.Writer = w
	}}
}

// WithFormatter sets the formatter, nil restores the default one.
func WithFormatter(f *TemplateFormatter) Option {
	return optionFunc{func(c *Config) {
		c.Formatter = f
	}}
}

// WithName sets the logger name exposed to templates.
func WithName(name string) Option {
	return optionFunc{func(c *Config) {
		c.Name = name
	}}
}

// LoggerOption is the option for Logger and Install.
type LoggerOption interface {
	apply(*loggerConfig)
}

type loggerConfig struct {
	lookup    LookupFunc
	injectors []Injector
}

type loggerOptionFunc func(*loggerConfig)

func (o loggerOptionFunc) apply(c *loggerConfig) {
	o(c)
}

// WithLookup sets how the active request is resolved from a context.
func WithLookup(lookup LookupFunc) LoggerOption {
	return loggerOptionFunc(func(c *loggerConfig) {
		c.lookup = lookup
	})
}

// WithInjectors registers injectors, as Logger.Inject does.
func WithInjectors(injectors ...Injector) LoggerOption {
	return loggerOptionFunc(func(c *loggerConfig) {
		c.injectors = append(c.injectors, injectors...)
	})
}
