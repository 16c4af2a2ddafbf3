package resource

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/identity/pkg/oauth1"
)

// Source describes one middle-tier resource server and the credentials
// this application uses to reach it.
type Source struct {
	Host   string `env:"HOST" yaml:"host"`
	Path   string `env:"PATH" yaml:"path"`
	Token  string `env:"TOKEN" yaml:"token"`
	Secret string `env:"SECRET" yaml:"secret"`
}

// Validate reports missing settings.
func (s Source) Validate() error {
	var errs []error
	if s.Host == "" {
		errs = append(errs, ErrMissingHost)
	}
	if s.Token == "" || s.Secret == "" {
		errs = append(errs, ErrMissingCreds)
	}
	return errors.Join(errs...)
}

// URL is the resource location without query parameters.
func (s Source) URL() string {
	return oauth1.JoinPath(s.Host, s.Path)
}

// RequestURL appends the query authorization for the user's access token secret,
// scoped to the resource URL.
func (s Source) RequestURL(tokenSecret string) string {
	u := s.URL()
	return u + "?oauth_token_secret=" + url.QueryEscape(tokenSecret) + "&oauth_scope=" + url.QueryEscape(u)
}

// Header builds the request headers. If-None-Match is set only when etag is not empty.
func (s Source) Header(etag string) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(s.Token+":"+s.Secret)))
	if etag != "" {
		h.Set("If-None-Match", etag)
	}
	return h
}

// Sources maps a resource key to its source.
type Sources map[string]Source

// Validate checks every source.
func (ss Sources) Validate() error {
	if len(ss) == 0 {
		return ErrNoSources
	}
	var errs []error
	for key, s := range ss {
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("source %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// LoadSources reads sources from YAML keyed by resource key:
//
//	middle:
//	  host: http://middle.localhost/
//	  path: /resources/
//	  token: X
//	  secret: YWRzZmFkc2ZmZGFzZA
func LoadSources(r io.Reader) (Sources, error) {
	var ss Sources
	if err := yaml.NewDecoder(r).Decode(&ss); err != nil {
		return nil, errors.Join(ErrDecodeSources, err)
	}
	if err := ss.Validate(); err != nil {
		return nil, err
	}
	return ss, nil
}
