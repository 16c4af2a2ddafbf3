package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/pkg/health"
)

func TestChecker_Run(t *testing.T) {
	t.Parallel()

	t.Run("no checks is healthy", func(t *testing.T) {
		t.Parallel()
		resp := health.NewChecker(nil).Run(context.Background())
		require.Equal(t, health.StatusHealthy, resp.Status)
	})

	t.Run("one failure marks unhealthy", func(t *testing.T) {
		t.Parallel()
		resp := health.NewChecker(health.Checks{
			"ok":   func(context.Context) error { return nil },
			"down": func(context.Context) error { return errors.New("connection refused") },
		}).Run(context.Background())

		require.Equal(t, health.StatusUnhealthy, resp.Status)
		require.Equal(t, health.StatusHealthy, resp.Checks["ok"].Status)
		require.Equal(t, health.StatusUnhealthy, resp.Checks["down"].Status)
		require.Contains(t, resp.Checks["down"].Error, "connection refused")
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		resp := health.NewChecker(health.Checks{
			"slow": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}, health.WithTimeout(10*time.Millisecond)).Run(context.Background())

		require.Equal(t, health.StatusUnhealthy, resp.Status)
		require.Contains(t, resp.Checks["slow"].Error, health.ErrCheckTimeout.Error())
	})
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	health.LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, w.Code)

	checker := health.NewChecker(health.Checks{"down": func(context.Context) error { return errors.New("x") }})
	w = httptest.NewRecorder()
	checker.ReadinessHandler()(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp health.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, health.StatusUnhealthy, resp.Status)
}
