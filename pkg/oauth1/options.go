package oauth1

import "net/http"

// Option configures a Passaporte client.
type Option func(*options)

type options struct {
	httpClient  *http.Client
	maxBodySize int64
}

// WithHTTPClient sets the HTTP client used for the handshake and API calls.
// Useful for httptest servers or custom transports.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithMaxBodySize limits how many bytes of a response body are read.
// Default: 1 MiB.
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}
