package oauth1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/identity/pkg/session"
)

// RequestToken is the temporary credential pair issued at the start of the handshake.
type RequestToken struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

// Authorization is the result of starting the handshake.
// Exactly one of RedirectURL and Inline is set.
type Authorization struct {
	RequestToken RequestToken
	RedirectURL  string // provider consent page
	Inline       []byte // body to render as-is
}

// Response is a buffered provider response.
type Response struct {
	Header     http.Header
	Body       []byte
	StatusCode int
}

// Decode unmarshals a JSON response body into dest.
func (r *Response) Decode(dest any) error {
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return errors.Join(ErrDecodeFailed, err)
	}
	return nil
}

// Client talks to the OAuth1 identity provider.
type Client interface {
	// Authorize obtains a request token and returns where to send the user.
	// callbackURL must be absolute.
	Authorize(ctx context.Context, callbackURL string) (*Authorization, error)

	// Authorized completes the handshake from the provider callback request.
	// It returns an error wrapping ErrDenied when the callback carries no
	// usable authorization.
	Authorized(ctx context.Context, r *http.Request, pending RequestToken) (*session.AccessToken, error)

	// Get performs an unsigned GET with the given headers.
	Get(ctx context.Context, url string, header http.Header) (*Response, error)

	// Post performs an empty POST signed with the access token.
	Post(ctx context.Context, url string, token session.AccessToken) (*Response, error)
}
