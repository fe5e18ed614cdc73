// extlog extends log/slog for web applications: records logged while a
// request is handled carry the request's path, URL, method, remote address
// and user agent, and can be rendered with text/template instead of a fixed
// format, so the output can depend on what the record holds.
//
// Install wraps the handler of an application's logger in a ContextHandler,
// Middleware makes the request available to it, and a Handler configured
// with a TemplateFormatter renders the records. Applications add their own
// fields with Logger.Inject.
package extlog
