package oauth1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dghubble/oauth1"

	"github.com/dmitrymomot/identity/pkg/session"
)

const defaultMaxBodySize = 1 << 20

// Passaporte implements Client for a PassaporteWeb provider.
type Passaporte struct {
	cfg         Config
	httpClient  *http.Client
	maxBodySize int64
}

// NewPassaporte creates a PassaporteWeb client.
// Returns an error if the configuration is incomplete.
func NewPassaporte(cfg Config, opts ...Option) (*Passaporte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{httpClient: http.DefaultClient, maxBodySize: defaultMaxBodySize}
	for _, opt := range opts {
		opt(&o)
	}

	return &Passaporte{
		cfg:         cfg,
		httpClient:  o.httpClient,
		maxBodySize: o.maxBodySize,
	}, nil
}

// Config returns the provider configuration.
func (p *Passaporte) Config() Config {
	return p.cfg
}

// Authorize obtains a request token bound to callbackURL and returns the
// provider consent page URL.
func (p *Passaporte) Authorize(ctx context.Context, callbackURL string) (*Authorization, error) {
	conf := p.oauthConfig(ctx, callbackURL)

	token, secret, err := conf.RequestToken()
	if err != nil {
		return nil, errors.Join(ErrRequestToken, err)
	}

	authURL, err := conf.AuthorizationURL(token)
	if err != nil {
		return nil, errors.Join(ErrRequestToken, err)
	}

	return &Authorization{
		RequestToken: RequestToken{Token: token, Secret: secret},
		RedirectURL:  authURL.String(),
	}, nil
}

// Authorized exchanges the callback verifier for an access token.
func (p *Passaporte) Authorized(ctx context.Context, r *http.Request, pending RequestToken) (*session.AccessToken, error) {
	token, verifier, err := oauth1.ParseAuthorizationCallback(r)
	if err != nil {
		return nil, errors.Join(ErrDenied, err)
	}
	if pending.Token == "" || token != pending.Token {
		return nil, errors.Join(ErrDenied, errors.New("request token mismatch"))
	}

	accessToken, accessSecret, err := p.oauthConfig(ctx, "").AccessToken(pending.Token, pending.Secret, verifier)
	if err != nil {
		return nil, errors.Join(ErrAccessToken, err)
	}

	return &session.AccessToken{Token: accessToken, Secret: accessSecret}, nil
}

// Get performs an unsigned GET.
func (p *Passaporte) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	return p.do(p.httpClient, req)
}

// Post performs an empty POST signed with the user's access token.
func (p *Passaporte) Post(ctx context.Context, url string, token session.AccessToken) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	ctx = context.WithValue(ctx, oauth1.HTTPClient, p.httpClient)
	client := p.oauthConfig(ctx, "").Client(ctx, oauth1.NewToken(token.Token, token.Secret))
	return p.do(client, req)
}

func (p *Passaporte) do(client *http.Client, req *http.Request) (*Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("read body: %w", err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// oauthConfig builds a per-call handshake config whose HTTP requests carry ctx.
func (p *Passaporte) oauthConfig(ctx context.Context, callbackURL string) *oauth1.Config {
	base := p.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &oauth1.Config{
		ConsumerKey:    p.cfg.ConsumerKey,
		ConsumerSecret: p.cfg.ConsumerSecret,
		CallbackURL:    callbackURL,
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: p.cfg.URL(p.cfg.RequestTokenPath),
			AuthorizeURL:    p.cfg.URL(p.cfg.AuthorizationPath),
			AccessTokenURL:  p.cfg.URL(p.cfg.AccessTokenPath),
		},
		HTTPClient: &http.Client{
			Transport: contextTransport{ctx: ctx, base: base},
			Timeout:   p.httpClient.Timeout,
		},
	}
}

// contextTransport attaches ctx to requests built by the oauth1 package,
// which does not accept a context for the token endpoints.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

var _ Client = (*Passaporte)(nil)
