// Package middlewares provides HTTP middleware for identity applications.
//
// # Request ID
//
// RequestID assigns an ID to each request for tracing. It reuses an ID from
// X-Request-ID or X-Correlation-ID when present and generates a UUID
// otherwise. Pair it with RequestIDExtractor so every log record carries
// request_id:
//
//	log := logger.New(cfg.Log,
//	    middlewares.RequestIDExtractor(),
//	    identity.SessionIDExtractor(),
//	)
//	app := identity.New(
//	    identity.WithLogger(log),
//	    identity.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover catches panics in handlers and returns a *PanicError, which the
// app ErrorHandler receives like any other error.
//
//	identity.WithErrorHandler(func(c identity.Context, err error) error {
//	    if middlewares.IsPanicError(err) {
//	        return c.String(500, "Internal Server Error")
//	    }
//	    return c.String(500, err.Error())
//	})
//
// # Order
//
// RequestID goes first so the panic log carries the ID:
//
//	identity.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	)
package middlewares
