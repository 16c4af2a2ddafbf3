package resource_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/pkg/oauth1"
	"github.com/dmitrymomot/identity/pkg/resource"
	"github.com/dmitrymomot/identity/pkg/session"
)

const middleURL = "http://middle.localhost/resources/" +
	"?oauth_token_secret=17a799ddbbbfb855f25e89d0bf51ae19" +
	"&oauth_scope=http%3A%2F%2Fmiddle.localhost%2Fresources%2F"

// fakeClient serves canned responses to Get and records each call.
type fakeClient struct {
	mu      sync.Mutex
	calls   []fakeCall
	resp    *oauth1.Response
	err     error
	release chan struct{}
}

type fakeCall struct {
	ctx    context.Context
	url    string
	header http.Header
}

func (c *fakeClient) Authorize(context.Context, string) (*oauth1.Authorization, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeClient) Authorized(context.Context, *http.Request, oauth1.RequestToken) (*session.AccessToken, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeClient) Post(context.Context, string, session.AccessToken) (*oauth1.Response, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeClient) Get(ctx context.Context, url string, header http.Header) (*oauth1.Response, error) {
	c.mu.Lock()
	c.calls = append(c.calls, fakeCall{ctx: ctx, url: url, header: header})
	c.mu.Unlock()

	if c.release != nil {
		<-c.release
	}
	return c.resp, c.err
}

func (c *fakeClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func respond(status int, body string, header ...string) *oauth1.Response {
	h := http.Header{}
	for i := 0; i+1 < len(header); i += 2 {
		h.Set(header[i], header[i+1])
	}
	return &oauth1.Response{StatusCode: status, Header: h, Body: []byte(body)}
}

func middleSources() resource.Sources {
	return resource.Sources{
		"middle": {
			Host:   "http://middle.localhost/",
			Path:   "/resources/",
			Token:  "X",
			Secret: "YWRzZmFkc2ZmZGFzZA",
		},
	}
}

func newSession() *session.Session {
	sess := session.New("token", time.Now().Add(time.Hour))
	sess.SetAccessToken(session.AccessToken{Token: "ZHNkc2VyZWY", Secret: "17a799ddbbbfb855f25e89d0bf51ae19"})
	return sess
}

// logRecords decodes JSON log lines written into buf.
func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func newFetcher(client oauth1.Client, opts ...resource.Option) (*resource.Fetcher, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	opts = append([]resource.Option{resource.WithLogger(logger)}, opts...)
	return resource.NewFetcher(client, middleSources(), opts...), buf
}

func TestFetcher_Success(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: respond(http.StatusOK, `{"msg":"some data"}`,
		"ETag", `"v1"`,
		"Expires", "Sun, 06 Nov 1994 08:49:37 GMT",
	)}
	f, logs := newFetcher(client)
	sess := newSession()

	require.NoError(t, f.EnsureFresh(context.Background(), sess, "middle"))

	require.Equal(t, 1, client.callCount())
	call := client.calls[0]
	require.Equal(t, middleURL, call.url)
	require.Equal(t, "application/json", call.header.Get("Accept"))
	require.Equal(t, "Basic WDpZV1J6Wm1Ga2MyWm1aR0Z6WkE=", call.header.Get("Authorization"))
	require.Empty(t, call.header.Values("If-None-Match"))

	r, ok := sess.Resource("middle")
	require.True(t, ok)
	require.Equal(t, http.StatusOK, r.Status)
	require.Equal(t, `"v1"`, r.ETag)
	require.NotNil(t, r.Expires)
	require.Equal(t, int64(784111777), *r.Expires)
	require.JSONEq(t, `{"msg":"some data"}`, string(r.Data))
	require.Empty(t, logs.String())
}

func TestFetcher_SuccessWithoutValidators(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: respond(http.StatusOK, "plain text", "Expires", "not a date")}
	f, _ := newFetcher(client)
	sess := newSession()

	require.NoError(t, f.EnsureFresh(context.Background(), sess, "middle"))

	r, _ := sess.Resource("middle")
	require.Nil(t, r.Expires)
	require.Empty(t, r.ETag)

	var text string
	require.NoError(t, r.Decode(&text))
	require.Equal(t, "plain text", text)
}

func TestFetcher_ConditionalRevalidation(t *testing.T) {
	t.Parallel()

	past := int64(100)
	cached := &session.Resource{Data: json.RawMessage(`{"msg":"old"}`), ETag: "E", Expires: &past, Status: http.StatusOK}

	t.Run("304 with same etag keeps data", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{resp: respond(http.StatusNotModified, "", "ETag", "E")}
		f, _ := newFetcher(client)
		sess := newSession()
		sess.SetResource("middle", cached)

		require.NoError(t, f.EnsureFresh(context.Background(), sess, "middle"))

		require.Equal(t, "E", client.calls[0].header.Get("If-None-Match"))
		r, _ := sess.Resource("middle")
		require.Equal(t, &session.Resource{Data: cached.Data, ETag: "E", Expires: &past, Status: http.StatusNotModified}, r)
	})

	t.Run("304 without etag keeps cached etag and takes new expires", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{resp: respond(http.StatusNotModified, "", "Expires", "Sun, 06 Nov 1994 08:49:37 GMT")}
		f, _ := newFetcher(client)
		sess := newSession()
		sess.SetResource("middle", cached)

		require.NoError(t, f.EnsureFresh(context.Background(), sess, "middle"))

		r, _ := sess.Resource("middle")
		require.Equal(t, "E", r.ETag)
		require.Equal(t, int64(784111777), *r.Expires)
		require.JSONEq(t, `{"msg":"old"}`, string(r.Data))
		require.Equal(t, int64(100), *cached.Expires, "cached entry must not be mutated")
	})

	t.Run("304 with new etag replaces it", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{resp: respond(http.StatusNotModified, "", "ETag", "F")}
		f, _ := newFetcher(client)
		sess := newSession()
		sess.SetResource("middle", cached)

		require.NoError(t, f.EnsureFresh(context.Background(), sess, "middle"))

		r, _ := sess.Resource("middle")
		require.Equal(t, "F", r.ETag)
		require.Equal(t, "E", cached.ETag)
	})
}

func TestFetcher_FreshShortCircuit(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	expires := now.Unix() + 600
	cached := &session.Resource{Data: json.RawMessage(`{"msg":"cached"}`), ETag: "E", Expires: &expires, Status: http.StatusOK}

	client := &fakeClient{resp: respond(http.StatusOK, `{}`)}
	f, _ := newFetcher(client, resource.WithClock(func() time.Time { return now }))
	sess := newSession()
	sess.SetResource("middle", cached)
	sess.ClearDirty()

	require.NoError(t, f.EnsureFresh(context.Background(), sess, "middle"))

	require.Zero(t, client.callCount())
	r, _ := sess.Resource("middle")
	require.Same(t, cached, r)
	require.Equal(t, int64(1_700_000_600), *r.Expires)
	require.False(t, sess.IsDirty())
}

func TestFetcher_FailureOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resp     *oauth1.Response
		err      error
		category string
		code     float64
		marker   bool
	}{
		{name: "unauthorized", resp: respond(http.StatusUnauthorized, ""), marker: true},
		{name: "forbidden", resp: respond(http.StatusForbidden, "account suspended"), category: "forbidden", code: 403},
		{name: "server error", resp: respond(http.StatusInternalServerError, ""), category: "unknown", code: 500},
		{name: "site overloaded", resp: respond(529, ""), category: "unknown", code: 529},
		{name: "transport", err: errors.Join(oauth1.ErrFetchFailed, &url.Error{Op: "Get", URL: "http://middle.localhost", Err: errors.New("connection refused")}), category: "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeClient{resp: tt.resp, err: tt.err}
			f, logs := newFetcher(client)
			sess := newSession()
			sess.SetResource("middle", &session.Resource{Data: json.RawMessage(`{"msg":"old"}`), Status: http.StatusOK})

			require.NoError(t, f.EnsureFresh(context.Background(), sess, "middle"))
			require.Equal(t, 1, client.callCount())

			r, ok := sess.Resource("middle")
			require.True(t, ok)

			if tt.marker {
				require.True(t, r.Unauthorized())
				require.Empty(t, logs.String())
				return
			}

			require.Nil(t, r, "slot must be cleared")

			records := logRecords(t, logs)
			require.Len(t, records, 1)
			require.Equal(t, "ERROR", records[0]["level"])
			require.Equal(t, tt.category, records[0]["category"])
			require.Equal(t, "middle", records[0]["source"])
			if tt.code != 0 {
				require.Equal(t, tt.code, records[0]["code"])
			}
			switch tt.category {
			case "forbidden":
				require.Equal(t, "account suspended", records[0]["reason"])
			case "unknown":
				require.Contains(t, records[0]["error"], "Error")
			case "transport":
				require.Equal(t, "*url.Error", records[0]["error_type"])
				require.Contains(t, records[0]["error"], "connection refused")
			}
		})
	}
}

func TestFetcher_UnknownLabel(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: respond(529, "")}
	f, logs := newFetcher(client)

	require.NoError(t, f.EnsureFresh(context.Background(), newSession(), "middle"))

	records := logRecords(t, logs)
	require.Len(t, records, 1)
	require.Equal(t, "HTTP529Error", records[0]["error"])
}

func TestFetcher_NoAccessToken(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: respond(http.StatusOK, `{}`)}
	f, logs := newFetcher(client)
	sess := session.New("token", time.Now().Add(time.Hour))

	require.NoError(t, f.EnsureFresh(context.Background(), sess, "middle"))

	require.Zero(t, client.callCount())
	r, ok := sess.Resource("middle")
	require.True(t, ok)
	require.Nil(t, r)

	records := logRecords(t, logs)
	require.Len(t, records, 1)
	require.Equal(t, "transport", records[0]["category"])
}

func TestFetcher_UnknownSource(t *testing.T) {
	t.Parallel()

	f, _ := newFetcher(&fakeClient{})
	err := f.EnsureFresh(context.Background(), newSession(), "billing")
	require.ErrorIs(t, err, resource.ErrUnknownSource)
}

func TestFetcher_CollapsesConcurrentRevalidations(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: respond(http.StatusOK, `{"msg":"some data"}`), release: make(chan struct{})}
	f, _ := newFetcher(client)

	base := newSession()
	data, err := session.Marshal(base)
	require.NoError(t, err)

	const n = 5
	var wg sync.WaitGroup
	sessions := make([]*session.Session, n)
	for i := range n {
		sess, err := session.Unmarshal(data)
		require.NoError(t, err)
		sessions[i] = sess

		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.EnsureFresh(context.Background(), sess, "middle")
		}()
	}

	require.Eventually(t, func() bool { return client.callCount() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(client.release)
	wg.Wait()

	require.Equal(t, 1, client.callCount())
	for _, sess := range sessions {
		r, _ := sess.Resource("middle")
		require.JSONEq(t, `{"msg":"some data"}`, string(r.Data))
	}
}

func TestFetcher_SharedFetchSurvivesLeaderCancellation(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: respond(http.StatusOK, `{"msg":"some data"}`), release: make(chan struct{})}
	f, _ := newFetcher(client)

	base := newSession()
	data, err := session.Marshal(base)
	require.NoError(t, err)
	leader, err := session.Unmarshal(data)
	require.NoError(t, err)
	follower, err := session.Unmarshal(data)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = f.EnsureFresh(ctx, leader, "middle")
	}()
	require.Eventually(t, func() bool { return client.callCount() == 1 }, time.Second, time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = f.EnsureFresh(context.Background(), follower, "middle")
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	close(client.release)
	wg.Wait()

	client.mu.Lock()
	shared := client.calls[0].ctx
	client.mu.Unlock()
	require.NoError(t, shared.Err(), "remote call must not inherit the request cancellation")

	for _, sess := range []*session.Session{leader, follower} {
		r, _ := sess.Resource("middle")
		require.NotNil(t, r)
		require.JSONEq(t, `{"msg":"some data"}`, string(r.Data))
	}
}
