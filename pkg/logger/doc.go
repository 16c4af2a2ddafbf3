// Package logger builds slog loggers with request-scoped attributes and
// optional Sentry reporting.
//
// [Config] picks the level and format (LOG_LEVEL, LOG_FORMAT). Context
// extractors add attributes such as the request ID to every record logged
// with a request context:
//
//	log := logger.New(cfg.Log,
//		middlewares.RequestIDExtractor(),
//		identity.SessionIDExtractor(),
//	)
//
// [NewWithSentry] also forwards warnings and errors to Sentry when
// SENTRY_DSN is set and falls back to stdout only otherwise.
//
// [NewNope] discards everything and is meant for tests.
package logger
