package internal_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/internal"
	"github.com/dmitrymomot/identity/pkg/oauth1"
	"github.com/dmitrymomot/identity/pkg/session"
)

const (
	testSecret      = "0123456789abcdef0123456789abcdef"
	testBaseURL     = "http://app.test"
	testUserDataURL = "http://provider.test/sso/fetchuserdata/"
	testUserUUID    = "a82670c2-027e-4079-b5c7-81f2433041b3"
	testAccountUUID = "d9a795c8-c891-4665-ac63-9d408209be29"
)

// fakeClient is a scripted oauth1.Client.
type fakeClient struct {
	mu sync.Mutex

	authorization *oauth1.Authorization
	authorizeErr  error
	accessToken   session.AccessToken
	authorizedErr error
	profile       map[string]any
	postErr       error

	callbacks []string
	pending   []oauth1.RequestToken
	posts     []session.AccessToken
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		authorization: &oauth1.Authorization{
			RequestToken: oauth1.RequestToken{Token: "request-token", Secret: "request-secret"},
			RedirectURL:  "http://provider.test/sso/authorize/?oauth_token=request-token",
		},
		accessToken: session.AccessToken{Token: "R0JaNT1RKNDP", Secret: "W3oZSRHACS090Xwf"},
		profile:     activeProfile(testAccountUUID),
	}
}

func activeProfile(accounts ...string) map[string]any {
	list := make([]map[string]any, 0, len(accounts))
	for _, id := range accounts {
		list = append(list, map[string]any{"uuid": id, "name": "Test Account", "plan_slug": "basic"})
	}
	return map[string]any{
		"uuid":      testUserUUID,
		"email":     "johndoe@myfreecomm.com.br",
		"is_active": true,
		"accounts":  list,
	}
}

func (f *fakeClient) Authorize(_ context.Context, callbackURL string) (*oauth1.Authorization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, callbackURL)
	return f.authorization, f.authorizeErr
}

func (f *fakeClient) Authorized(_ context.Context, _ *http.Request, pending oauth1.RequestToken) (*session.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, pending)
	if f.authorizedErr != nil {
		return nil, f.authorizedErr
	}
	t := f.accessToken
	return &t, nil
}

func (f *fakeClient) Get(context.Context, string, http.Header) (*oauth1.Response, error) {
	return nil, oauth1.ErrFetchFailed
}

func (f *fakeClient) Post(_ context.Context, url string, token session.AccessToken) (*oauth1.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, token)
	if f.postErr != nil {
		return nil, f.postErr
	}
	if url != testUserDataURL {
		return &oauth1.Response{StatusCode: http.StatusNotFound}, nil
	}
	body, err := json.Marshal(f.profile)
	if err != nil {
		return nil, err
	}
	return &oauth1.Response{StatusCode: http.StatusOK, Body: body, Header: http.Header{}}, nil
}

func (f *fakeClient) calls() (callbacks []string, pending []oauth1.RequestToken, posts []session.AccessToken) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.callbacks...),
		append([]oauth1.RequestToken(nil), f.pending...),
		append([]session.AccessToken(nil), f.posts...)
}

// dashboard is a protected page echoing the user data.
type dashboard struct {
	flow *internal.AuthFlow
	mw   []internal.Middleware
}

func (d dashboard) Routes(r internal.Router) {
	mw := append([]internal.Middleware{d.flow.UserRequired()}, d.mw...)
	r.GET("/dashboard", func(c internal.Context) error {
		u, ok := c.UserData()
		if !ok {
			return c.String(http.StatusTeapot, "no user data")
		}
		return c.JSON(http.StatusOK, u)
	}, mw...)
}

// testServer serves app and returns a client that keeps cookies and
// does not follow redirects.
func testServer(t *testing.T, app *internal.App) (*httptest.Server, *http.Client) {
	t.Helper()

	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, client
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func cookieValue(t *testing.T, client *http.Client, srv *httptest.Server, name string) string {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	for _, c := range client.Jar.Cookies(req.URL) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
