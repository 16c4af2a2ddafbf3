package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/identity/pkg/db"
	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/oauth1"
	"github.com/dmitrymomot/identity/pkg/redis"
	"github.com/dmitrymomot/identity/pkg/resource"
)

// Session store backends.
const (
	storeMemory   = "memory"
	storeRedis    = "redis"
	storePostgres = "postgres"
)

var (
	ErrInvalidStore    = errors.New("config: SESSION_STORE must be memory, redis or postgres")
	ErrMissingRedisURL = errors.New("config: REDIS_URL is required for the redis session store")
	ErrMissingDBURL    = errors.New("config: DATABASE_URL is required for the postgres session store")
)

// Config is the program configuration, read from the environment.
type Config struct {
	Addr         string `env:"ADDR" envDefault:":8080"`
	BaseURL      string `env:"BASE_URL"`
	CookieSecret string `env:"COOKIE_SECRET,required"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`
	Entrypoint   string `env:"LOGIN_ENTRYPOINT" envDefault:"/dashboard"`

	// YAML file with resource sources keyed by resource key.
	// Without it a single "middle" source is read from MIDDLE_* variables.
	SourcesFile string `env:"SOURCES_FILE"`

	AllowedRedirectHosts []string `env:"ALLOWED_REDIRECT_HOSTS" envSeparator:","`

	Passaporte oauth1.Config
	Log        logger.Config
	Sentry     logger.SentryConfig
	Redis      redis.Config
	Database   db.Config
}

// loadConfig parses the environment and validates every section.
func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	var errs []error
	if err := cfg.Passaporte.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch cfg.SessionStore {
	case storeMemory:
	case storeRedis:
		if cfg.Redis.URL == "" {
			errs = append(errs, ErrMissingRedisURL)
		}
	case storePostgres:
		if cfg.Database.URL == "" {
			errs = append(errs, ErrMissingDBURL)
		}
	default:
		errs = append(errs, ErrInvalidStore)
	}
	return cfg, errors.Join(errs...)
}

// loadSources reads resource sources from SourcesFile, or a single
// "middle" source from MIDDLE_HOST, MIDDLE_PATH, MIDDLE_TOKEN and MIDDLE_SECRET.
func loadSources(cfg Config) (resource.Sources, error) {
	if cfg.SourcesFile != "" {
		f, err := os.Open(cfg.SourcesFile)
		if err != nil {
			return nil, fmt.Errorf("open sources: %w", err)
		}
		defer f.Close()
		return resource.LoadSources(f)
	}

	var src resource.Source
	if err := env.ParseWithOptions(&src, env.Options{Prefix: "MIDDLE_"}); err != nil {
		return nil, fmt.Errorf("parse middle source: %w", err)
	}
	sources := resource.Sources{"middle": src}
	if err := sources.Validate(); err != nil {
		return nil, err
	}
	return sources, nil
}
