package extlog

import "log/slog"

// Application is the part of a web application Install needs: access to
// the logger it logs with.
type Application interface {
	Logger() *slog.Logger
	SetLogger(*slog.Logger)
}

// Install replaces the logger of app with one adding the request fields
// and the injected fields to every record, records keep going to the
// handler app was using. The returned Logger shares its injectors with the
// installed logger.
//
// Installing twice reuses the installed ContextHandler.
func Install(app Application, opts ...LoggerOption) *Logger {
	var h slog.Handler
	if current := app.Logger(); current != nil {
		h = current.Handler()
	}
	l := New(h, opts...)
	app.SetLogger(l.Slog())
	return l
}
