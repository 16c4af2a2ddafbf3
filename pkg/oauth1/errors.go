package oauth1

import "errors"

var (
	ErrMissingHost           = errors.New("oauth1: missing provider host")
	ErrMissingConsumerKey    = errors.New("oauth1: missing consumer key")
	ErrMissingConsumerSecret = errors.New("oauth1: missing consumer secret")
	ErrMissingPath           = errors.New("oauth1: missing endpoint path")

	// ErrDenied is returned when the provider callback does not carry a usable
	// authorization: the user refused, the verifier is missing, or the
	// request token does not match the pending one.
	ErrDenied = errors.New("oauth1: authorization denied")

	ErrRequestToken = errors.New("oauth1: failed to obtain request token")
	ErrAccessToken  = errors.New("oauth1: failed to obtain access token")
	ErrFetchFailed  = errors.New("oauth1: request to provider failed")
	ErrDecodeFailed = errors.New("oauth1: failed to decode provider response")
	ErrBadStatus    = errors.New("oauth1: provider returned non-OK status")
)
