package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/identity"
	"github.com/dmitrymomot/identity/middlewares"
	"github.com/dmitrymomot/identity/pkg/cookie"
	"github.com/dmitrymomot/identity/pkg/db"
	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/oauth1"
	"github.com/dmitrymomot/identity/pkg/redis"
	"github.com/dmitrymomot/identity/pkg/resource"
	"github.com/dmitrymomot/identity/pkg/session"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Log, cfg.Sentry,
		middlewares.RequestIDExtractor(),
		identity.SessionIDExtractor(),
	)

	sources, err := loadSources(cfg)
	if err != nil {
		return err
	}

	client, err := oauth1.NewPassaporte(cfg.Passaporte)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	fetcher := resource.NewFetcher(client, sources,
		resource.WithLogger(log),
		resource.WithMetrics(resource.NewMetrics(reg)),
	)

	var (
		store         session.Store
		readiness     []identity.HealthOption
		startupHooks  []identity.RunOption
		shutdownHooks []identity.RunOption
		stopCleanup   func()
	)

	switch cfg.SessionStore {
	case storeRedis:
		rdb, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		store = session.NewRedisStore(rdb, session.WithPrefix("identity:session"))
		readiness = append(readiness, identity.WithReadinessCheck("redis", redis.Healthcheck(rdb)))
		shutdownHooks = append(shutdownHooks, identity.ShutdownHook(redis.Shutdown(rdb)))

	case storePostgres:
		pool, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		pg := session.NewPostgresStore(pool, log)
		store = pg
		readiness = append(readiness, identity.WithReadinessCheck("postgres", db.Healthcheck(pool)))
		startupHooks = append(startupHooks, identity.StartupHook(func(ctx context.Context) error {
			if err := db.Migrate(ctx, pool, session.Migrations, cfg.Database.MigrationsTable, log); err != nil {
				return err
			}
			if cfg.Database.CleanupSchedule == "" {
				return nil
			}
			stop, err := pg.StartCleanup(cfg.Database.CleanupSchedule)
			if err != nil {
				return err
			}
			stopCleanup = stop
			return nil
		}))
		shutdownHooks = append(shutdownHooks,
			identity.ShutdownHook(func(context.Context) error {
				if stopCleanup != nil {
					stopCleanup()
				}
				return nil
			}),
			identity.ShutdownHook(db.Shutdown(pool)),
		)

	default:
		mem := session.NewMemoryStore()
		store = mem
		shutdownHooks = append(shutdownHooks, identity.ShutdownHook(func(context.Context) error {
			return mem.Close()
		}))
	}

	flow := identity.NewAuthFlow(client, cfg.Passaporte.FetchUserDataURL(),
		identity.WithEntrypoint(cfg.Entrypoint),
		identity.WithLogoutRedirect(cfg.Passaporte.LogoutURL()),
		identity.WithAllowedRedirectHosts(cfg.AllowedRedirectHosts...),
		identity.WithLoginHook(func(ctx context.Context, u session.UserData) error {
			log.InfoContext(ctx, "user logged in",
				slog.String("user_uuid", u.UUID),
				slog.Int("accounts", len(u.AccountIDs())),
			)
			return nil
		}),
	)

	app := identity.New(
		identity.WithBaseURL(cfg.BaseURL),
		identity.WithLogger(log),
		identity.WithCookieSecret(cfg.CookieSecret, cookie.WithSecure(cfg.CookieSecure)),
		identity.WithSession(store),
		identity.WithResourceFetcher(fetcher),
		identity.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
		),
		identity.WithHealthChecks(readiness...),
		identity.WithHandlers(
			flow,
			&dashboard{flow: flow},
			metricsHandler{handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})},
		),
	)

	runOpts := append(startupHooks, shutdownHooks...)
	runOpts = append(runOpts, identity.Logger(log))
	return app.Run(cfg.Addr, runOpts...)
}

// dashboard shows the logged-in user and their service accounts.
type dashboard struct {
	flow *identity.AuthFlow
}

func (h *dashboard) Routes(r identity.Router) {
	r.GET("/", func(c identity.Context) error {
		return c.Redirect(http.StatusFound, "/dashboard")
	})
	r.GET("/dashboard", h.show, h.flow.UserRequired())
	r.GET("/accounts", h.accounts, h.flow.UserRequired(), identity.MiddleResources())
}

func (h *dashboard) show(c identity.Context) error {
	u, _ := c.UserData()
	return c.JSON(http.StatusOK, map[string]any{
		"uuid":      u.UUID,
		"email":     u.Email,
		"full_name": u.FullName,
		"accounts":  u.AccountIDs(),
	})
}

func (h *dashboard) accounts(c identity.Context) error {
	res, ok := c.Resource(identity.MiddleResource)
	switch {
	case !ok || res == nil:
		return identity.ErrServiceUnavailable("accounts are temporarily unavailable")
	case res.Unauthorized():
		return identity.NewHTTPError(http.StatusForbidden, "access to accounts was denied")
	}
	return c.Blob(http.StatusOK, "application/json", res.Data)
}

// metricsHandler exposes the Prometheus registry.
type metricsHandler struct {
	handler http.Handler
}

func (h metricsHandler) Routes(r identity.Router) {
	r.Mount("/metrics", h.handler)
}
