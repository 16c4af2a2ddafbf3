package internal

import (
	"context"

	"github.com/dmitrymomot/identity/pkg/session"
)

// ResourceFetcher revalidates cached provider resources held in a session.
// *resource.Fetcher implements it.
type ResourceFetcher interface {
	EnsureFresh(ctx context.Context, sess *session.Session, key string) error
}

// Resources returns middleware that revalidates the given resource sources
// before the handler runs. Failed fetches leave a cleared slot in the session;
// only an unknown source key surfaces as an error.
//
// Example:
//
//	r.GET("/accounts", h.accounts, flow.UserRequired(), identity.Resources("middle"))
func Resources(keys ...string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			if err := c.EnsureResources(keys...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
