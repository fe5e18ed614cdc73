package extlog

import (
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/icefed/extlog/buffer"
)

// RFC3339Milli define the time format as RFC3339 with millisecond precision.
const RFC3339Milli = "2006-01-02T15:04:05.999Z07:00"

// ErrNoTemplate is returned by NewTemplateFormatter when neither a template
// name nor a template source is configured.
var ErrNoTemplate = errors.New("extlog: template name or source required")

// FormatterConfig configures a TemplateFormatter. Name takes precedence
// over Source when both are set.
type FormatterConfig struct {
	// Name of a template registered in the environment.
	Name string
	// Source of an inline template.
	Source string
	// TimeLayout is used for asctime, RFC3339Milli if empty.
	TimeLayout string
}

// TemplateFormatter renders records with a template. Unlike a fixed format
// the template can branch, for example on whether the record carries an
// exception or was logged during a request:
//
//	{{.levelname}} {{.message}}
//	{{- if .http_url}} [{{.http_method}} {{.http_url}}]{{end}}
//	{{- if .exc_info}}
//	{{.exc_info.Traceback}}
//	{{- end}}
//
// The template data is a map holding the extra fields of the record, the
// http fields and the following keys:
//
//	name        logger name
//	msg, args   message format and arguments
//	message     msg formatted with args
//	level       slog.Level
//	levelno     level as int
//	levelname   DEBUG, INFO, WARNING, ERROR or CRITICAL
//	levelcolor  levelname, colored if the output is a terminal
//	time        record time
//	created     record time in UTC
//	asctime     record time formatted with TimeLayout
//	pathname, filename, module, funcName, lineno, source
//	            where the record was logged, if the handler adds source
//	process     process id
//	exc_info    *ExceptionInfo, nil if there is no exception
//	exc_text    exception traceback, empty if there is no exception
type TemplateFormatter struct {
	env    TemplateEnv
	config FormatterConfig

	tmpl atomic.Pointer[resolvedTemplate]
}

type resolvedTemplate struct {
	Template
}

// NewTemplateFormatter creates a formatter using the template environment
// of app. The template is resolved on first use.
func NewTemplateFormatter(app TemplateProvider, config FormatterConfig) (*TemplateFormatter, error) {
	if config.Name == "" && config.Source == "" {
		return nil, ErrNoTemplate
	}
	if config.TimeLayout == "" {
		config.TimeLayout = RFC3339Milli
	}
	return &TemplateFormatter{
		env:    app.TemplateEnv(),
		config: config,
	}, nil
}

// Template returns the template, resolving it on the first call.
// Concurrent first calls may each resolve it, the last one is kept.
func (f *TemplateFormatter) Template() (Template, error) {
	if t := f.tmpl.Load(); t != nil {
		return t.Template, nil
	}
	var (
		t   Template
		err error
	)
	if f.config.Name != "" {
		t, err = f.env.Lookup(f.config.Name)
	} else {
		t, err = f.env.Parse(f.config.Source)
	}
	if err != nil {
		return nil, err
	}
	f.tmpl.Store(&resolvedTemplate{t})
	return t, nil
}

// Format renders r.
func (f *TemplateFormatter) Format(r *Record) (string, error) {
	t, err := f.Template()
	if err != nil {
		return "", err
	}
	buf := buffer.New()
	defer buf.Free()
	if err := t.Execute(buf, f.data(r)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Fields cached by other formatters, they are recomputed.
const (
	excTextKey = "exc_text"
	asctimeKey = "asctime"
)

var pid = os.Getpid()

// data builds the template data for r.
func (f *TemplateFormatter) data(r *Record) map[string]any {
	data := make(map[string]any, len(r.Extra)+24)
	for key, value := range r.Extra {
		if key == excTextKey || key == asctimeKey {
			continue
		}
		switch v := value.(type) {
		case []byte:
			value = decodeText(v)
		case string:
			value = validText(v)
		}
		data[key] = value
	}
	for _, key := range httpKeys {
		if _, ok := data[key]; !ok {
			data[key] = ""
		}
	}

	data["name"] = r.Name
	data["msg"] = r.Msg
	data["args"] = r.Args
	data["level"] = r.Level
	data["levelno"] = int(r.Level)
	data["levelname"] = LevelName(r.Level)
	if r.terminal {
		data["levelcolor"] = colorLevelName(r.Level)
	} else {
		data["levelcolor"] = LevelName(r.Level)
	}

	data["time"] = r.Time
	data["created"] = r.Time.UTC()
	data[asctimeKey] = r.Time.Format(f.config.TimeLayout)
	data["msecs"] = r.Time.Nanosecond() / int(time.Millisecond)

	src := sourceFromPC(r.PC)
	data["pathname"] = src.Pathname
	data["filename"] = src.Filename
	data["module"] = src.Module
	data["funcName"] = src.FuncName
	data["lineno"] = src.Line
	data["source"] = src.Short()
	data["process"] = pid

	exc := NewExceptionInfo(r.ExcInfo)
	data[ExcInfoKey] = exc
	data[excTextKey] = exc.Traceback()
	data["message"] = validText(r.Message())
	return data
}
