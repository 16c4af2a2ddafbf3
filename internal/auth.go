package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/identity/pkg/oauth1"
	"github.com/dmitrymomot/identity/pkg/session"
)

const (
	defaultAuthPrefix      = "/sso"
	requestTokenCookieName = "__oauth_rt"
	requestTokenMaxAge     = 600 // seconds to complete the provider consent
)

// LoginHook is called after a successful login with the fresh user data,
// e.g. to sync the user's service accounts. Errors are logged and do not
// abort the login.
type LoginHook func(ctx context.Context, u session.UserData) error

// AuthFlow drives the OAuth1 login against the identity provider and
// guards protected routes.
//
// Routes, under the prefix (default "/sso"):
//
//	GET /            refresh user data with the stored access token, or start a login
//	GET /login       start the handshake; ?next= is carried through the callback
//	GET /authorized  provider callback
//	GET /logout      forget the user and the access token
type AuthFlow struct {
	client          oauth1.Client
	loginHook       LoginHook
	userDataURL     string
	prefix          string
	entrypoint      string
	unauthenticated string
	logoutRedirect  string
	redirects       redirectPolicy
}

// AuthOption configures the AuthFlow.
type AuthOption func(*AuthFlow)

// NewAuthFlow creates the login flow. userDataURL is the provider endpoint
// returning the user profile for a signed POST.
//
// Example:
//
//	client, err := oauth1.NewPassaporte(cfg.Passaporte)
//	flow := identity.NewAuthFlow(client, cfg.Passaporte.FetchUserDataURL(),
//	    identity.WithEntrypoint("/dashboard"),
//	    identity.WithLoginHook(syncAccounts),
//	)
func NewAuthFlow(client oauth1.Client, userDataURL string, opts ...AuthOption) *AuthFlow {
	f := &AuthFlow{
		client:          client,
		userDataURL:     userDataURL,
		prefix:          defaultAuthPrefix,
		entrypoint:      "/",
		unauthenticated: "/",
		logoutRedirect:  "/",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithPrefix mounts the auth routes under prefix. Default: "/sso".
func WithPrefix(prefix string) AuthOption {
	return func(f *AuthFlow) {
		if prefix != "" {
			f.prefix = "/" + strings.Trim(prefix, "/")
		}
	}
}

// WithEntrypoint sets where users land after login when no next URL is given.
func WithEntrypoint(path string) AuthOption {
	return func(f *AuthFlow) {
		if path != "" {
			f.entrypoint = path
		}
	}
}

// WithUnauthenticatedURL sets where users are sent when the handshake fails
// or the account is inactive.
func WithUnauthenticatedURL(path string) AuthOption {
	return func(f *AuthFlow) {
		if path != "" {
			f.unauthenticated = path
		}
	}
}

// WithLogoutRedirect sets where users land after logout.
func WithLogoutRedirect(path string) AuthOption {
	return func(f *AuthFlow) {
		if path != "" {
			f.logoutRedirect = path
		}
	}
}

// WithLoginHook registers a function called after every successful login.
func WithLoginHook(hook LoginHook) AuthOption {
	return func(f *AuthFlow) {
		f.loginHook = hook
	}
}

// WithAllowedRedirectHosts lists external hosts accepted as next targets.
// Relative targets and the application host are always accepted.
func WithAllowedRedirectHosts(hosts ...string) AuthOption {
	return func(f *AuthFlow) {
		f.redirects.allowedHosts = append(f.redirects.allowedHosts, hosts...)
	}
}

// Routes registers the auth routes.
func (f *AuthFlow) Routes(r Router) {
	r.Route(f.prefix, func(r Router) {
		r.GET("/", f.index)
		r.GET("/login", f.login)
		r.GET("/authorized", f.authorized)
		r.GET("/logout", f.logout)
	})
}

// LoginURL returns the absolute login URL carrying next.
func (f *AuthFlow) LoginURL(c Context, next string) string {
	u := c.AbsoluteURL(f.prefix + "/login")
	if next != "" {
		u = withQuery(u, "next", next)
	}
	return u
}

func (f *AuthFlow) login(c Context) error {
	cookies := c.Cookies()
	if cookies == nil {
		return ErrCookiesNotConfigured
	}

	callback := c.AbsoluteURL(f.prefix + "/authorized")
	if next := c.Query("next"); next != "" {
		callback = withQuery(callback, "next", next)
	}

	auth, err := f.client.Authorize(c, callback)
	if err != nil {
		c.LogError("oauth authorize failed", slog.Any("error", err))
		return c.Redirect(http.StatusFound, f.unauthenticated)
	}

	if err := cookies.SetJSON(c.Response(), requestTokenCookieName, auth.RequestToken, requestTokenMaxAge); err != nil {
		return err
	}

	if auth.RedirectURL == "" {
		return c.Blob(http.StatusOK, http.DetectContentType(auth.Inline), auth.Inline)
	}
	return c.Redirect(http.StatusFound, auth.RedirectURL)
}

func (f *AuthFlow) authorized(c Context) error {
	cookies := c.Cookies()
	if cookies == nil {
		return ErrCookiesNotConfigured
	}

	var pending oauth1.RequestToken
	if err := cookies.PopJSON(c.Response(), c.Request(), requestTokenCookieName, &pending); err != nil {
		c.LogWarn("oauth callback without pending request token", slog.Any("error", err))
		return c.Redirect(http.StatusFound, f.unauthenticated)
	}

	token, err := f.client.Authorized(c, c.Request(), pending)
	if err != nil {
		if errors.Is(err, oauth1.ErrDenied) {
			c.LogInfo("oauth authorization denied", slog.Any("error", err))
		} else {
			c.LogError("oauth access token exchange failed", slog.Any("error", err))
		}
		return c.Redirect(http.StatusFound, f.unauthenticated)
	}

	sess, err := c.InitSession()
	if err != nil {
		return err
	}
	sess.SetAccessToken(*token)

	return f.completeLogin(c, sess, *token)
}

// index refreshes the user data with the stored access token, or starts a
// login when there is none.
func (f *AuthFlow) index(c Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}

	var token session.AccessToken
	ok := false
	if sess != nil {
		token, ok = sess.GetAccessToken()
	}
	if !ok {
		return c.Redirect(http.StatusFound, f.LoginURL(c, c.Query("next")))
	}

	return f.completeLogin(c, sess, token)
}

// completeLogin fetches the profile with token and authenticates the session.
func (f *AuthFlow) completeLogin(c Context, sess *session.Session, token session.AccessToken) error {
	profile, err := f.fetchProfile(c, token)
	if err != nil {
		c.LogError("failed to fetch user data", slog.Any("error", err))
		return f.reject(c, sess)
	}
	if !profile.IsActive {
		c.LogInfo("login rejected: inactive user", slog.String("user_uuid", profile.UUID))
		return f.reject(c, sess)
	}
	return f.accept(c, sess, profile.UserData())
}

func (f *AuthFlow) fetchProfile(ctx context.Context, token session.AccessToken) (*oauth1.Profile, error) {
	resp, err := f.client.Post(ctx, f.userDataURL, token)
	if err != nil {
		return nil, err
	}
	return oauth1.DecodeProfile(resp)
}

func (f *AuthFlow) accept(c Context, sess *session.Session, u session.UserData) error {
	if prev, ok := sess.GetUserData(); !ok || prev.UUID != u.UUID {
		sess.ClearResources()
	}
	sess.SetUserData(u)

	if f.loginHook != nil {
		if err := f.loginHook(c, u); err != nil {
			c.LogError("login hook failed", slog.String("user_uuid", u.UUID), slog.Any("error", err))
		}
	}

	if err := c.RotateSession(); err != nil {
		return err
	}

	target := f.entrypoint
	if next := c.Query("next"); next != "" && f.redirects.allowed(next, c.AbsoluteURL("/")) {
		target = next
	}
	return c.Redirect(http.StatusFound, target)
}

func (f *AuthFlow) reject(c Context, sess *session.Session) error {
	sess.PopAccessToken()
	sess.PopUserData()
	sess.ClearResources()
	return c.Redirect(http.StatusFound, f.unauthenticated)
}

func (f *AuthFlow) logout(c Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess != nil {
		sess.PopUserData()
		sess.PopAccessToken()
		sess.ClearResources()
	}
	return c.Redirect(http.StatusFound, f.logoutRedirect)
}

var _ Handler = (*AuthFlow)(nil)
