package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/laika-mvc/laika/pkg/sanitizer"
	"github.com/laika-mvc/laika/pkg/session"
)

// Component is the interface for renderable templates.
// This is compatible with templ.Component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context provides request access, the response builder, and helpers.
// It also implements context.Context by delegating to the request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the response builder as an http.ResponseWriter.
	// Writes are buffered until the pipeline finishes.
	Response() http.ResponseWriter

	// ResponseWriter returns the response builder.
	ResponseWriter() *ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Route describes the matched route. It is zero for fallbacks.
	Route() RouteInfo

	// Param returns the captured path parameter or an empty string.
	Param(name string) string

	// Params returns all captured path parameters in declaration order.
	Params() Params

	// Query returns the query parameter value by name.
	Query(name string) string

	// QueryDefault returns the query parameter value or a default.
	QueryDefault(name, defaultValue string) string

	// Input returns a form or query value with all markup stripped.
	Input(name string) string

	// RawInput returns a form or query value as sent.
	RawInput(name string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Write appends to the response body.
	Write(p []byte) (int, error)

	// String writes a plain text response.
	String(code int, s string) error

	// HTML writes an HTML response.
	HTML(code int, html string) error

	// JSON writes a JSON response.
	JSON(code int, v any) error

	// Render renders a component with the given status code.
	Render(code int, component Component) error

	// NoContent sets the status code and leaves the body empty.
	NoContent(code int) error

	// Redirect sets a Location header and a redirect status.
	Redirect(code int, url string) error

	// Error creates an HTTPError for returning from handlers.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written reports whether a status or body has been produced.
	Written() bool

	// URL builds the path of a named route.
	URL(name string, params map[string]any) (string, error)

	// AbsoluteURL builds the path of a named route prefixed with the base URL.
	AbsoluteURL(name string, params map[string]any) (string, error)

	// Logger returns the request logger.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a request-scoped value. It is visible to log extractors.
	Set(key, value any)

	// Get returns a request-scoped value.
	Get(key any) any

	// Cookie returns a request cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a response cookie.
	SetCookie(name, value string, maxAge int)

	// DeleteCookie expires a cookie.
	DeleteCookie(name string)

	// Session returns the request session, creating one if needed.
	// Changes are persisted before the response is sent.
	// Returns session.ErrNotConfigured if WithSession was not called.
	Session() (*session.Session, error)

	// RegenerateSession moves the session to a new id.
	RegenerateSession() error

	// DestroySession deletes the session and its cookie.
	DestroySession() error
}

// requestContext implements the Context interface.
type requestContext struct {
	request    *http.Request
	response   *ResponseWriter
	dispatcher *Dispatcher
	route      RouteInfo
	params     Params

	session       *session.Session
	sessionLoaded bool

	// branched contexts record Set calls so they can be replayed on merge.
	branched bool
	sets     []contextValue
}

type contextValue struct {
	key, value any
}

func newContext(w http.ResponseWriter, r *http.Request, d *Dispatcher) *requestContext {
	return &requestContext{
		request:    r,
		response:   NewResponseWriter(w),
		dispatcher: d,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Route() RouteInfo {
	return c.route
}

func (c *requestContext) Param(name string) string {
	return c.params.Get(name)
}

func (c *requestContext) Params() Params {
	return c.params
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) Input(name string) string {
	return sanitizer.Purify(c.RawInput(name))
}

func (c *requestContext) RawInput(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Write(p []byte) (int, error) {
	return c.response.Write(p)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.WriteString(s)
	return err
}

func (c *requestContext) HTML(code int, html string) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.WriteString(html)
	return err
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) Render(code int, component Component) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return component.Render(c.Context(), c.response)
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	if code < http.StatusMultipleChoices || code > http.StatusPermanentRedirect {
		code = http.StatusFound
	}
	c.response.Header().Set("Location", url)
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) URL(name string, params map[string]any) (string, error) {
	return c.dispatcher.URL(name, params, false)
}

func (c *requestContext) AbsoluteURL(name string, params map[string]any) (string, error) {
	return c.dispatcher.URL(name, params, true)
}

func (c *requestContext) Logger() *slog.Logger {
	return c.dispatcher.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.dispatcher.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.dispatcher.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.dispatcher.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.dispatcher.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
	if c.branched {
		c.sets = append(c.sets, contextValue{key: key, value: value})
	}
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	cookie, err := c.request.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	http.SetCookie(c.response, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *requestContext) DeleteCookie(name string) {
	c.SetCookie(name, "", -1)
}

func (c *requestContext) Session() (*session.Session, error) {
	sm := c.dispatcher.sessions
	if sm == nil {
		return nil, session.ErrNotConfigured
	}
	if c.sessionLoaded {
		return c.session, nil
	}

	sess, err := sm.Load(c.Context(), c.request)
	if err != nil {
		return nil, err
	}
	c.session = sess
	c.sessionLoaded = true
	c.watchSession()
	return sess, nil
}

// watchSession persists the session right before the response is sent.
// Branches leave this to the context they merge into.
func (c *requestContext) watchSession() {
	if c.branched {
		return
	}
	c.response.OnBeforeCommit(func() {
		if c.session == nil {
			return
		}
		if err := c.dispatcher.sessions.Persist(c.Context(), c.response, c.session); err != nil {
			c.LogError("failed to save session", "error", err)
		}
	})
}

func (c *requestContext) RegenerateSession() error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	return c.dispatcher.sessions.Regenerate(c.Context(), sess)
}

func (c *requestContext) DestroySession() error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if err := c.dispatcher.sessions.Destroy(c.Context(), c.response, sess); err != nil {
		return err
	}
	c.session = nil
	return nil
}
