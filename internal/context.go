package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/identity/pkg/cookie"
	"github.com/dmitrymomot/identity/pkg/session"
)

// requestContextKey stores the *requestContext in the request context so
// global middleware, route middleware and the handler share one session.
type requestContextKey struct{}

// userDataKey stores the user data exposed by the access gate.
type userDataKey struct{}

// Context provides request/response access and helper methods.
// It embeds context.Context, so it can be passed to any blocking call.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the response writer.
	Response() http.ResponseWriter

	// Param returns a URL path parameter by name.
	Param(name string) string

	// Query returns a query string parameter by name.
	Query(name string) string

	// QueryDefault returns a query parameter or the default value if absent.
	QueryDefault(name, defaultValue string) string

	// Header returns a request header value.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes v as JSON with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response.
	String(code int, s string) error

	// Blob writes raw bytes with the given content type.
	Blob(code int, contentType string, b []byte) error

	// NoContent writes only the status code.
	NoContent(code int) error

	// Redirect sends a redirect to url, which is resolved to an absolute URL.
	Redirect(code int, url string) error

	// Error builds an HTTPError to return from a handler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written reports whether the response header was sent.
	Written() bool

	// Logger returns the application logger.
	Logger() *slog.Logger
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a request-scoped value.
	Set(key, value any)

	// Get reads a request-scoped value.
	Get(key any) any

	// Cookies returns the cookie manager, or nil when no cookie secret was configured.
	Cookies() *cookie.Manager

	// Session returns the current session, loading it lazily.
	// Returns nil, nil when the request has no session.
	// Returns session.ErrNotConfigured if WithSession was not used.
	Session() (*session.Session, error)

	// InitSession returns the current session, creating it when absent.
	InitSession() (*session.Session, error)

	// RotateSession gives the current session a new token and re-issues the cookie.
	RotateSession() error

	// DestroySession deletes the session and clears its cookie.
	DestroySession() error

	// IsAuthenticated reports whether the session carries user data.
	IsAuthenticated() bool

	// UserData returns the user data exposed by the access gate, falling back to the session.
	UserData() (session.UserData, bool)

	// EnsureResources revalidates the cached resources for the given source keys.
	EnsureResources(keys ...string) error

	// Resource returns the cached resource slot for key.
	Resource(key string) (*session.Resource, bool)

	// AbsoluteURL resolves ref against the application base URL.
	AbsoluteURL(ref string) string

	// RequestURL returns the absolute URL of the current request.
	RequestURL() string

	// ResponseWriter returns the hooked response writer.
	ResponseWriter() *ResponseWriter
}

type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	app      *App
	session  *session.Session

	sessionLoaded         bool
	sessionHookRegistered bool
}

// newContext returns the request context bound to r, creating it on first use.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	if c, ok := r.Context().Value(requestContextKey{}).(*requestContext); ok && c.app == app {
		c.request = r
		return c
	}

	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}

	c := &requestContext{
		response: rw,
		app:      app,
	}
	c.request = r.WithContext(context.WithValue(r.Context(), requestContextKey{}, c))
	return c
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
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

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
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

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	return c.Blob(code, "text/plain; charset=utf-8", []byte(s))
}

func (c *requestContext) Blob(code int, contentType string, b []byte) error {
	if contentType != "" {
		c.response.Header().Set("Content-Type", contentType)
	}
	c.response.WriteHeader(code)
	_, err := c.response.Write(b)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, c.AbsoluteURL(url), code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.app.logger
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c, msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c, msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c, msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookies() *cookie.Manager {
	return c.app.cookieManager
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.response
}

// registerSessionHook saves a modified session right before the response
// header goes out.
func (c *requestContext) registerSessionHook() {
	if c.sessionHookRegistered {
		return
	}
	c.sessionHookRegistered = true
	c.response.OnBeforeWrite(func() {
		if c.session == nil || !c.session.IsDirty() {
			return
		}
		// Best-effort: the response is already being written.
		if err := c.app.sessionManager.Store().Update(c, c.session); err != nil {
			c.LogError("failed to save session", slog.Any("error", err))
			return
		}
		c.session.ClearDirty()
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	if c.app.sessionManager == nil {
		return nil, session.ErrNotConfigured
	}

	c.registerSessionHook()

	if c.sessionLoaded {
		return c.session, nil
	}

	sess, err := c.app.sessionManager.LoadSession(c, c.request)
	if err != nil {
		return nil, err
	}

	c.session = sess
	c.sessionLoaded = true
	return c.session, nil
}

func (c *requestContext) InitSession() (*session.Session, error) {
	sess, err := c.Session()
	if err != nil || sess != nil {
		return sess, err
	}

	sess, err = c.app.sessionManager.CreateSession(c)
	if err != nil {
		return nil, err
	}

	c.session = sess
	c.app.sessionManager.SaveSession(c.response, sess)
	return sess, nil
}

func (c *requestContext) RotateSession() error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess == nil {
		return session.ErrNotFound
	}

	if err := c.app.sessionManager.RotateToken(c, sess); err != nil {
		return err
	}
	c.app.sessionManager.SaveSession(c.response, sess)
	return nil
}

func (c *requestContext) DestroySession() error {
	sess, err := c.Session()
	if err != nil {
		return err
	}

	if sess != nil {
		if err := c.app.sessionManager.Store().Delete(c, sess.ID); err != nil {
			return err
		}
	}
	c.app.sessionManager.DeleteSession(c.response)

	c.session = nil
	return nil
}

func (c *requestContext) IsAuthenticated() bool {
	_, ok := c.UserData()
	return ok
}

func (c *requestContext) UserData() (session.UserData, bool) {
	if u, ok := c.Get(userDataKey{}).(session.UserData); ok {
		return u, true
	}

	sess, err := c.Session()
	if err != nil || sess == nil {
		return session.UserData{}, false
	}
	return sess.GetUserData()
}

func (c *requestContext) EnsureResources(keys ...string) error {
	if c.app.fetcher == nil {
		return ErrResourcesNotConfigured
	}

	sess, err := c.Session()
	if err != nil || sess == nil {
		return err
	}

	for _, key := range keys {
		if err := c.app.fetcher.EnsureFresh(c, sess, key); err != nil {
			return err
		}
	}
	return nil
}

func (c *requestContext) Resource(key string) (*session.Resource, bool) {
	sess, err := c.Session()
	if err != nil || sess == nil {
		return nil, false
	}
	return sess.Resource(key)
}

func (c *requestContext) AbsoluteURL(ref string) string {
	return resolveURL(c.baseURL(), ref)
}

func (c *requestContext) RequestURL() string {
	return resolveURL(c.baseURL(), c.request.URL.RequestURI())
}

func (c *requestContext) baseURL() string {
	if c.app.baseURL != "" {
		return c.app.baseURL
	}
	return requestBaseURL(c.request)
}

var _ Context = (*requestContext)(nil)
