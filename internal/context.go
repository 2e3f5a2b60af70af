package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/session"
)

// ErrNoRenderer is returned by Context.Render when the app has no view
// renderer.
var ErrNoRenderer = errors.New("internal: no renderer configured")

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// ResponseWriter returns the status-tracking writer shared by the
	// whole pipeline.
	ResponseWriter() *ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns a path parameter. Router parameters win over values
	// matched by a conventional route.
	Param(name string) string

	// Query returns the query parameter value by name.
	Query(name string) string

	// QueryDefault returns the query parameter value or a default.
	QueryDefault(name, defaultValue string) string

	// Form returns the form value by name, parsing the body on first access.
	Form(name string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// HTML writes a literal HTML document.
	HTML(code int, html string) error

	// Render executes the named view with data. Nothing is written when the
	// view fails.
	Render(code int, name string, data any) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Redirect redirects to the given URL with the given status code.
	Redirect(code int, url string) error

	// Error creates and returns an HTTPError without writing a response.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written returns true if a response has already been written.
	Written() bool

	// Logger returns the logger for advanced usage.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	// SetContext replaces the request context.
	SetContext(ctx context.Context)

	// Cookie returns a plain cookie value.
	Cookie(name string) (string, error)

	// SetCookie adds a Set-Cookie header.
	SetCookie(cookie *http.Cookie)

	// DeleteCookie expires a cookie on path "/".
	DeleteCookie(name string)

	// Session returns the current session, creating an unsaved one when the
	// browser has none. Returns session.ErrNotConfigured outside the
	// session middleware.
	Session() (*session.Session, error)

	// Principal returns the signed-in principal, or an anonymous one.
	Principal() *identity.Principal

	// IsAuthenticated reports whether the principal was issued by a scheme.
	IsAuthenticated() bool

	// UserID returns the name identifier of the signed-in principal.
	UserID() string
}

// requestContext implements the Context interface.
type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	app      *App
}

// newContext creates a context around w. The response wrapper is shared
// with outer middlewares when they already installed one.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	return &requestContext{
		request:  r,
		response: NewResponseWriter(w),
		app:      app,
	}
}

func (c *requestContext) Request() *http.Request { return c.request }

func (c *requestContext) Response() http.ResponseWriter { return c.response }

func (c *requestContext) ResponseWriter() *ResponseWriter { return c.response }

func (c *requestContext) Context() context.Context { return c.request.Context() }

func (c *requestContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }

func (c *requestContext) Done() <-chan struct{} { return c.request.Context().Done() }

func (c *requestContext) Err() error { return c.request.Context().Err() }

func (c *requestContext) Value(key any) any { return c.request.Context().Value(key) }

func (c *requestContext) Param(name string) string {
	if v := chi.URLParam(c.request, name); v != "" {
		return v
	}
	return RouteValuesFromContext(c.request.Context()).Get(name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	_, err = c.response.Write(append(data, '\n'))
	return err
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) HTML(code int, html string) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(html))
	return err
}

func (c *requestContext) Render(code int, name string, data any) error {
	if c.app == nil || c.app.renderer == nil {
		return ErrNoRenderer
	}
	var buf bytes.Buffer
	if err := c.app.renderer.Render(&buf, name, data); err != nil {
		return err
	}
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := buf.WriteTo(c.response)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	if c.app == nil {
		return slog.Default()
	}
	return c.app.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.Logger().DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.Logger().InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.Logger().WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.Logger().ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.SetContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Cookie(name string) (string, error) {
	ck, err := c.request.Cookie(name)
	if err != nil {
		return "", err
	}
	return ck.Value, nil
}

func (c *requestContext) SetCookie(cookie *http.Cookie) {
	http.SetCookie(c.response, cookie)
}

func (c *requestContext) DeleteCookie(name string) {
	http.SetCookie(c.response, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
}

func (c *requestContext) Session() (*session.Session, error) {
	st, ok := c.Get(sessionStateKey{}).(*sessionState)
	if !ok {
		return nil, session.ErrNotConfigured
	}
	return st.load(c.request.Context())
}

func (c *requestContext) Principal() *identity.Principal {
	return identity.PrincipalFromContext(c.request.Context())
}

func (c *requestContext) IsAuthenticated() bool {
	return c.Principal().IsAuthenticated()
}

func (c *requestContext) UserID() string {
	p := c.Principal()
	if !p.IsAuthenticated() {
		return ""
	}
	return p.ID()
}

// NewContext builds a Context outside a running App, e.g. in tests.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	return newContext(w, r, nil)
}
