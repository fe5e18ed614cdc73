package extlog

import (
	"fmt"
	"io"
	"io/fs"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Template is a compiled template.
type Template interface {
	Execute(w io.Writer, data any) error
}

// TemplateEnv resolves named templates and compiles inline ones.
type TemplateEnv interface {
	Lookup(name string) (Template, error)
	Parse(source string) (Template, error)
}

// TemplateProvider gives access to the template environment of an application.
type TemplateProvider interface {
	TemplateEnv() TemplateEnv
}

// Env is a TemplateEnv built on text/template. Templates have the sprig
// functions available and fail on missing keys.
type Env struct {
	mu    sync.RWMutex
	root  *template.Template
	funcs template.FuncMap
}

var _ TemplateEnv = (*Env)(nil)

// NewEnv creates an empty environment. funcs are added to the sprig functions.
func NewEnv(funcs template.FuncMap) *Env {
	fm := sprig.TxtFuncMap()
	for name, f := range funcs {
		fm[name] = f
	}
	return &Env{
		root:  newTemplate("", fm),
		funcs: fm,
	}
}

func newTemplate(name string, funcs template.FuncMap) *template.Template {
	return template.New(name).Funcs(funcs).Option("missingkey=error")
}

// Add parses source as the template called name.
func (e *Env) Add(name, source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.root.New(name).Parse(source); err != nil {
		return fmt.Errorf("extlog: parse template %q: %w", name, err)
	}
	return nil
}

// ParseFS parses the templates matching patterns in fsys, each is named
// after its file's base name.
func (e *Env) ParseFS(fsys fs.FS, patterns ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.root.ParseFS(fsys, patterns...); err != nil {
		return fmt.Errorf("extlog: parse templates: %w", err)
	}
	return nil
}

// Lookup returns the template called name.
func (e *Env) Lookup(name string) (Template, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t := e.root.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("extlog: template %q not found", name)
	}
	return t, nil
}

// Parse compiles an inline template.
func (e *Env) Parse(source string) (Template, error) {
	t, err := newTemplate("inline", e.funcs).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("extlog: parse inline template: %w", err)
	}
	return t, nil
}

// TemplateEnv implements TemplateProvider, so an Env can be passed where an
// application is expected.
func (e *Env) TemplateEnv() TemplateEnv {
	return e
}
