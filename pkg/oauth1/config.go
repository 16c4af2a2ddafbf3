package oauth1

import (
	"errors"
	"strings"
)

// Config holds the PassaporteWeb consumer credentials and API paths.
// Paths are relative to Host.
type Config struct {
	Host           string `env:"PASSAPORTE_HOST,required"`
	Slug           string `env:"PASSAPORTE_SLUG"`
	ConsumerKey    string `env:"PASSAPORTE_CONSUMER_TOKEN,required"`
	ConsumerSecret string `env:"PASSAPORTE_CONSUMER_SECRET,required"`

	RequestTokenPath  string `env:"PASSAPORTE_REQUEST_TOKEN_PATH" envDefault:"sso/initiate/"`
	AuthorizationPath string `env:"PASSAPORTE_AUTHORIZATION_PATH" envDefault:"sso/authorize/"`
	AccessTokenPath   string `env:"PASSAPORTE_ACCESS_TOKEN_PATH" envDefault:"sso/token/"`
	FetchUserDataPath string `env:"PASSAPORTE_FETCH_USER_DATA_PATH" envDefault:"sso/fetchuserdata/"`

	AuthAPI         string `env:"PASSAPORTE_AUTH_API" envDefault:"accounts/api/auth/"`
	RegistrationAPI string `env:"PASSAPORTE_REGISTRATION_API" envDefault:"accounts/api/create/"`
	ProfileAPI      string `env:"PASSAPORTE_PROFILE_API" envDefault:"profile/api/info/"`
	LogoutPath      string `env:"PASSAPORTE_LOGOUT_PATH" envDefault:"accounts/logout/"`
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, ErrMissingHost)
	}
	if c.ConsumerKey == "" {
		errs = append(errs, ErrMissingConsumerKey)
	}
	if c.ConsumerSecret == "" {
		errs = append(errs, ErrMissingConsumerSecret)
	}
	for _, p := range []string{c.RequestTokenPath, c.AuthorizationPath, c.AccessTokenPath, c.FetchUserDataPath} {
		if p == "" {
			errs = append(errs, ErrMissingPath)
			break
		}
	}
	return errors.Join(errs...)
}

// URL joins path to the configured host.
func (c Config) URL(path string) string {
	return JoinPath(c.Host, path)
}

// FetchUserDataURL is the signed endpoint returning the logged-in user's profile.
func (c Config) FetchUserDataURL() string {
	return c.URL(c.FetchUserDataPath)
}

// LogoutURL is the provider page that ends the provider-side session.
func (c Config) LogoutURL() string {
	return c.URL(c.LogoutPath)
}

// JoinPath joins host and path with exactly one slash between them.
func JoinPath(host, path string) string {
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(path, "/")
}
