package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL returns ErrEmptyConnectionURL", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, Config{})
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrEmptyConnectionURL)
	})

	t.Run("invalid URL returns ErrFailedToParseURL", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name string
			url  string
		}{
			{name: "http scheme", url: "http://localhost:6379"},
			{name: "no scheme", url: "localhost:6379"},
			{name: "invalid port", url: "redis://localhost:notaport"},
			{name: "invalid database", url: "redis://localhost:6379/notanumber"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				client, err := Open(ctx, Config{URL: tc.url})
				require.Nil(t, client)
				require.ErrorIs(t, err, ErrFailedToParseURL)
			})
		}
	})
}

func TestParse_AppliesConfig(t *testing.T) {
	t.Parallel()

	opts, err := parse(Config{URL: "redis://localhost:6379/2", PoolSize: 25, ReadTimeout: 7 * time.Second})
	require.NoError(t, err)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 25, opts.PoolSize)
	require.Equal(t, 7*time.Second, opts.ReadTimeout)
	require.Equal(t, 3*time.Second, opts.WriteTimeout, "zero fields use defaults")
	require.Equal(t, 5*time.Second, opts.DialTimeout)
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultConfig(), Config{}.withDefaults())

	custom := Config{URL: "redis://x", RetryAttempts: 7}.withDefaults()
	require.Equal(t, 7, custom.RetryAttempts)
	require.Equal(t, "redis://x", custom.URL)
	require.Equal(t, 5, custom.MinIdleConns, "zero idle conns use the default")
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("close error")
	c := &mockCloser{err: closeErr}

	err := Shutdown(c)(context.Background())
	require.Equal(t, closeErr, err)
	require.True(t, c.closed)
}

func TestWait_ContextCancellation(t *testing.T) {
	t.Parallel()

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := wait(ctx, 10*time.Second)
		require.Equal(t, context.Canceled, err)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("timeout completes normally", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		require.NoError(t, wait(context.Background(), 20*time.Millisecond))
		require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})
}

type mockCloser struct {
	closed bool
	err    error
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}
