package middlewares_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/internal"
	"github.com/dmitrymomot/identity/middlewares"
	"github.com/dmitrymomot/identity/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	echo := func(c internal.Context) error {
		return c.String(http.StatusOK, middlewares.GetRequestID(c))
	}

	t.Run("generates a uuid", func(t *testing.T) {
		t.Parallel()

		rec := do(t, echo, nil, middlewares.RequestID())

		id := rec.Header().Get("X-Request-ID")
		require.NoError(t, uuid.Validate(id))
		require.Equal(t, id, rec.Body.String())
	})

	t.Run("reuses upstream header in order", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", echo, middlewares.RequestID())
		})))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-1")
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, "corr-1", rec.Body.String())

		req.Header.Set("X-Request-ID", "req-1")
		rec = httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, "req-1", rec.Body.String())
	})

	t.Run("ignores oversized upstream id", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", echo, middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "generated" })))
		})))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("a", 500))
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, "generated", rec.Body.String())
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", echo, middlewares.RequestID(
				middlewares.WithRequestIDHeaders("X-Trace"),
				middlewares.WithRequestIDResponseHeader("X-Trace"),
			))
		})))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace", "trace-9")
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, "trace-9", rec.Header().Get("X-Trace"))
		require.Empty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("global middleware shares the id with handlers", func(t *testing.T) {
		t.Parallel()

		rec := do(t, echo, []internal.Option{internal.WithMiddleware(middlewares.RequestID())})
		require.Equal(t, rec.Header().Get("X-Request-ID"), rec.Body.String())
		require.NotEmpty(t, rec.Body.String())
	})

	t.Run("GetRequestID without middleware", func(t *testing.T) {
		t.Parallel()

		rec := do(t, echo, nil)
		require.Empty(t, rec.Body.String())
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	t.Run("adds request_id to logs", func(t *testing.T) {
		t.Parallel()

		var buf syncBuffer
		log := slog.New(logger.WithContext(slog.NewTextHandler(&buf, nil), middlewares.RequestIDExtractor()))

		rec := do(t, func(c internal.Context) error {
			c.LogInfo("handling")
			return c.NoContent(http.StatusOK)
		}, []internal.Option{internal.WithLogger(log)}, middlewares.RequestID())

		require.Contains(t, buf.String(), "request_id="+rec.Header().Get("X-Request-ID"))
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()

		_, ok := middlewares.RequestIDExtractor()(context.Background())
		require.False(t, ok)
	})
}
