package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/internal"
)

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.ErrBadRequest("missing next")
		got := internal.AsHTTPError(httpErr)
		require.NotNil(t, got)
		require.Equal(t, http.StatusBadRequest, got.Code)
		require.Equal(t, "Bad Request", got.StatusText())
	})

	t.Run("wrapped HTTPError keeps cause", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("store unavailable")
		err := fmt.Errorf("load session: %w", internal.ErrServiceUnavailable("try again later", internal.WithError(cause)))

		require.True(t, internal.IsHTTPError(err))
		got := internal.AsHTTPError(err)
		require.Equal(t, http.StatusServiceUnavailable, got.StatusCode())
		require.ErrorIs(t, err, cause)
	})

	t.Run("unrelated and nil errors", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsHTTPError(errors.New("plain error")))
		require.Nil(t, internal.AsHTTPError(nil))
		require.False(t, internal.IsHTTPError(nil))
	})
}
