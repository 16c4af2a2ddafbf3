package internal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/session"
)

// CheckAccess reads the user data from the session. When there is none it
// returns the absolute login URL with next set to the requested URL.
// It never mutates the session and makes no network calls.
func (f *AuthFlow) CheckAccess(c Context) (*session.UserData, string) {
	sess, err := c.Session()
	if err != nil {
		c.LogWarn("access check: session unavailable", slog.Any("error", err))
	}
	if sess != nil {
		if u, ok := sess.GetUserData(); ok {
			return &u, ""
		}
	}
	return nil, f.LoginURL(c, c.RequestURL())
}

// UserRequired redirects anonymous requests to the login route and exposes
// the user data to the handler through c.UserData(). Users without
// accounts are let through.
//
// Example:
//
//	r.GET("/dashboard", h.dashboard, flow.UserRequired())
func (f *AuthFlow) UserRequired() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			u, loginURL := f.CheckAccess(c)
			if u == nil {
				return c.Redirect(http.StatusFound, loginURL)
			}
			c.Set(userDataKey{}, *u)
			return next(c)
		}
	}
}

// SessionIDExtractor returns a ContextExtractor that adds "session_id" to
// records logged with a request context once the session is loaded.
func SessionIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		c, ok := ctx.Value(requestContextKey{}).(*requestContext)
		if !ok || c.session == nil {
			return slog.Attr{}, false
		}
		return slog.String("session_id", c.session.ID), true
	}
}
