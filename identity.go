package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/identity/internal"
	"github.com/dmitrymomot/identity/pkg/cookie"
	"github.com/dmitrymomot/identity/pkg/health"
	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/oauth1"
	"github.com/dmitrymomot/identity/pkg/session"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	// It manages HTTP routing, sessions, the login flow and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access, the session and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// ResponseWriter wraps http.ResponseWriter with before-write hooks.
	ResponseWriter = internal.ResponseWriter

	// HTTPError is an error carrying an HTTP status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// AuthFlow drives the OAuth1 login and guards protected routes.
	AuthFlow = internal.AuthFlow

	// AuthOption configures the AuthFlow.
	AuthOption = internal.AuthOption

	// LoginHook runs after every successful login.
	LoginHook = internal.LoginHook

	// ResourceFetcher revalidates cached provider resources in a session.
	ResourceFetcher = internal.ResourceFetcher

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// Session is the server-side state of one browser.
	Session = session.Session

	// SessionStore persists sessions.
	SessionStore = session.Store

	// UserData is the cached identity of the logged-in user.
	UserData = session.UserData

	// AccessToken is the OAuth1 token pair issued by the provider.
	AccessToken = session.AccessToken

	// OAuthClient performs signed requests against the identity provider.
	OAuthClient = oauth1.Client
)

// Errors returned by the framework.
var (
	ErrCookiesNotConfigured   = internal.ErrCookiesNotConfigured
	ErrResourcesNotConfigured = internal.ErrResourcesNotConfigured
	ErrSessionNotConfigured   = session.ErrNotConfigured
)

// MiddleResource is the conventional source key of the provider resource
// listing the user's service accounts.
const MiddleResource = "middle"

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	flow := identity.NewAuthFlow(client, cfg.Passaporte.FetchUserDataURL())
//	app := identity.New(
//	    identity.WithCookieSecret(cfg.CookieSecret),
//	    identity.WithSession(session.NewMemoryStore()),
//	    identity.WithHandlers(flow, handlers.NewDashboard(flow)),
//	)
//
//	err := app.Run(":8080", identity.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewAuthFlow creates the login flow. userDataURL is the provider endpoint
// returning the user profile, usually oauth1.Config.FetchUserDataURL().
// Register the flow with WithHandlers to mount its routes.
func NewAuthFlow(client OAuthClient, userDataURL string, opts ...AuthOption) *AuthFlow {
	return internal.NewAuthFlow(client, userDataURL, opts...)
}

// App options

// WithBaseURL sets the external URL of the application.
// Redirects and the provider callback URL are built from it.
func WithBaseURL(baseURL string) Option {
	return internal.WithBaseURL(baseURL)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithErrorHandler sets a custom error handler for handler errors.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
//
// Example:
//
//	identity.WithHealthChecks(
//	    identity.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithCookieSecret configures the cookie manager. The secret must be at
// least 32 bytes; New panics otherwise.
func WithCookieSecret(secret string, opts ...CookieOption) Option {
	return internal.WithCookieSecret(secret, opts...)
}

// WithSession enables server-side sessions stored in store.
// Requires WithCookieSecret earlier in the option list.
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithResourceFetcher enables c.EnsureResources and the Resources middleware.
func WithResourceFetcher(f ResourceFetcher) Option {
	return internal.WithResourceFetcher(f)
}

// Session options

// WithSessionCookieName sets the session cookie name. Default: "__sid".
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionMaxAge sets the session lifetime in seconds. Default: 14 days.
func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

// Auth options

// WithPrefix mounts the auth routes under prefix. Default: "/sso".
func WithPrefix(prefix string) AuthOption {
	return internal.WithPrefix(prefix)
}

// WithEntrypoint sets where users land after login without a next URL.
func WithEntrypoint(path string) AuthOption {
	return internal.WithEntrypoint(path)
}

// WithUnauthenticatedURL sets where users go when login fails.
func WithUnauthenticatedURL(path string) AuthOption {
	return internal.WithUnauthenticatedURL(path)
}

// WithLogoutRedirect sets where users land after logout.
func WithLogoutRedirect(path string) AuthOption {
	return internal.WithLogoutRedirect(path)
}

// WithLoginHook registers a function called after every successful login.
func WithLoginHook(hook LoginHook) AuthOption {
	return internal.WithLoginHook(hook)
}

// WithAllowedRedirectHosts lists external hosts accepted as next targets.
func WithAllowedRedirectHosts(hosts ...string) AuthOption {
	return internal.WithAllowedRedirectHosts(hosts...)
}

// Middleware

// Resources returns middleware that revalidates the given resource
// sources before the handler runs.
func Resources(keys ...string) Middleware {
	return internal.Resources(keys...)
}

// MiddleResources revalidates the service account listing.
// Place it after AuthFlow.UserRequired.
func MiddleResources() Middleware {
	return internal.Resources(MiddleResource)
}

// SessionIDExtractor adds "session_id" to request-scoped log records.
func SessionIDExtractor() ContextExtractor {
	return internal.SessionIDExtractor()
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the runtime logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before the server starts listening.
// A failing hook aborts the start.
//
// Example:
//
//	identity.StartupHook(func(ctx context.Context) error {
//	    return db.Migrate(ctx, pool, session.Migrations, "identity_migrations", log)
//	})
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
//
// Example:
//
//	identity.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// HTTP errors

// NewHTTPError creates an HTTPError with the given status code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithError attaches the underlying cause to an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// ErrBadRequest creates a 400 HTTPError.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrInternal creates a 500 HTTPError.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// ErrServiceUnavailable creates a 503 HTTPError.
func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError returns the HTTPError wrapped by err, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}
