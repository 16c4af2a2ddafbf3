package resource_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/pkg/resource"
)

func TestSource_Request(t *testing.T) {
	t.Parallel()

	src := resource.Source{
		Host:   "http://middle.localhost/",
		Path:   "/resources/",
		Token:  "X",
		Secret: "YWRzZmFkc2ZmZGFzZA",
	}

	require.Equal(t,
		"http://middle.localhost/resources/"+
			"?oauth_token_secret=17a799ddbbbfb855f25e89d0bf51ae19"+
			"&oauth_scope=http%3A%2F%2Fmiddle.localhost%2Fresources%2F",
		src.RequestURL("17a799ddbbbfb855f25e89d0bf51ae19"),
	)
	require.Contains(t, src.RequestURL("a b~c/d"), "oauth_token_secret=a+b~c%2Fd&")

	h := src.Header("")
	require.Equal(t, "application/json", h.Get("Accept"))
	require.Equal(t, "Basic WDpZV1J6Wm1Ga2MyWm1aR0Z6WkE=", h.Get("Authorization"))
	require.Empty(t, h.Values("If-None-Match"))

	require.Equal(t, `"v1"`, src.Header(`"v1"`).Get("If-None-Match"))
}

func TestLoadSources(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		ss, err := resource.LoadSources(strings.NewReader(`
middle:
  host: http://middle.localhost/
  path: /resources/
  token: X
  secret: YWRzZmFkc2ZmZGFzZA
billing:
  host: http://billing.localhost
  path: invoices/
  token: T
  secret: S
`))
		require.NoError(t, err)
		require.Len(t, ss, 2)
		require.Equal(t, "http://billing.localhost/invoices/", ss["billing"].URL())
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		_, err := resource.LoadSources(strings.NewReader("middle:\n  host: http://middle.localhost/\n"))
		require.ErrorIs(t, err, resource.ErrMissingCreds)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		_, err := resource.LoadSources(strings.NewReader("{}"))
		require.ErrorIs(t, err, resource.ErrNoSources)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		_, err := resource.LoadSources(strings.NewReader("middle: [unterminated"))
		require.ErrorIs(t, err, resource.ErrDecodeSources)
	})
}
