package resource

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/pkg/oauth1"
	"github.com/dmitrymomot/identity/pkg/session"
)

type staticClient struct {
	oauth1.Client
	resp *oauth1.Response
}

func (c staticClient) Get(context.Context, string, http.Header) (*oauth1.Response, error) {
	return c.resp, nil
}

func TestMetrics_CountsOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	now := time.Unix(1000, 0)
	client := staticClient{resp: &oauth1.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Expires": {now.Add(time.Hour).UTC().Format(http.TimeFormat)}},
		Body:       []byte(`{}`),
	}}
	f := NewFetcher(client, Sources{"middle": {Host: "http://m", Token: "t", Secret: "s"}},
		WithMetrics(m), WithClock(func() time.Time { return now }))

	sess := session.New("token", time.Now().Add(time.Hour))
	sess.SetAccessToken(session.AccessToken{Token: "a", Secret: "b"})

	require.NoError(t, f.EnsureFresh(context.Background(), sess, "middle"))
	require.NoError(t, f.EnsureFresh(context.Background(), sess, "middle"))

	require.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("middle", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("middle", outcomeFresh)))

	count, err := testutil.GatherAndCount(reg, "identity_resource_fetch_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() { m.observe("middle", "success") })
}
