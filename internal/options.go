package internal

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/identity/pkg/cookie"
	"github.com/dmitrymomot/identity/pkg/health"
	"github.com/dmitrymomot/identity/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithBaseURL sets the external URL of the application, e.g.
// "https://app.example.com". Redirects and the provider callback URL are
// built from it. Without it they are derived from each request.
func WithBaseURL(baseURL string) Option {
	return func(a *App) {
		a.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error.
//
// Example:
//
//	identity.WithErrorHandler(func(c identity.Context, err error) error {
//	    return c.JSON(http.StatusInternalServerError, map[string]string{
//	        "error": err.Error(),
//	    })
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	identity.WithHealthChecks(
//	    identity.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    identity.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger sets the application logger.
//
// Example:
//
//	identity.WithLogger(logger.New(cfg.Log,
//	    middlewares.RequestIDExtractor(),
//	    identity.SessionIDExtractor(),
//	))
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieSecret configures the cookie manager that signs the session
// cookie and encrypts the pending OAuth request token. The secret must be
// at least 32 bytes; New panics otherwise.
//
// Example:
//
//	identity.WithCookieSecret(os.Getenv("COOKIE_SECRET"), cookie.WithSecure(true))
func WithCookieSecret(secret string, opts ...cookie.Option) Option {
	return func(a *App) {
		m, err := cookie.New(secret, opts...)
		if err != nil {
			panic(fmt.Sprintf("cookie manager: %v", err))
		}
		a.cookieManager = m
	}
}

// WithSession enables server-side session management.
// Requires WithCookieSecret earlier in the option list.
// Sessions are loaded lazily and saved automatically before the response is written.
//
// Example:
//
//	identity.New(
//	    identity.WithCookieSecret(secret),
//	    identity.WithSession(session.NewRedisStore(client),
//	        identity.WithSessionMaxAge(86400*7),
//	    ),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		if a.cookieManager == nil {
			panic("session: WithCookieSecret must precede WithSession")
		}
		a.sessionManager = NewSessionManager(store, a.cookieManager, opts...)
	}
}

// WithResourceFetcher enables c.EnsureResources and the Resources middleware.
//
// Example:
//
//	fetcher := resource.NewFetcher(client, sources, resource.WithLogger(log))
//	identity.New(identity.WithResourceFetcher(fetcher))
func WithResourceFetcher(f ResourceFetcher) Option {
	return func(a *App) {
		a.fetcher = f
	}
}
