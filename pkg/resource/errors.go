package resource

import "errors"

var (
	ErrUnknownSource = errors.New("resource: unknown source")
	ErrNoAccessToken = errors.New("resource: session has no access token")
	ErrMissingHost   = errors.New("resource: missing source host")
	ErrMissingCreds  = errors.New("resource: missing source token or secret")
	ErrNoSources     = errors.New("resource: no sources configured")
	ErrDecodeSources = errors.New("resource: failed to decode sources")
)
