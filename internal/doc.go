// Package internal provides the core types and implementation for the identity
// web integration.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/identity" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: Orchestrates HTTP routing, sessions and graceful shutdown
//   - Context: Request/response access, session and identity helpers
//   - Router: Interface handlers use to declare routes
//   - Handler, HandlerFunc, Middleware, ErrorHandler: the handler model
//   - AuthFlow: OAuth1 login against the identity provider, plus the access gate
//   - ResourceFetcher: revalidates provider resources cached in the session
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to the
// provider client, the session store or the resource fetcher:
//
//	func (h *Handler) accounts(c internal.Context) error {
//	    res, ok := c.Resource("middle")
//	    if !ok || res == nil {
//	        return c.JSON(http.StatusOK, []string{})
//	    }
//	    if res.Unauthorized() {
//	        return c.Redirect(http.StatusFound, "/sso/logout")
//	    }
//	    return c.Blob(http.StatusOK, "application/json", res.Data)
//	}
//
// # Sessions
//
// Sessions are loaded lazily on the first Session() call. The session token
// travels in a signed cookie; the session itself lives in a session.Store.
// A modified session is saved right before the first byte of the response
// is written, so handlers only mutate it.
//
// # Login Flow
//
// AuthFlow registers /login, /authorized, /logout and an index route under
// its prefix. The pending OAuth request token is kept in a short-lived
// encrypted cookie, so starting a login never touches the session.
// UserRequired guards routes and exposes the user data through c.UserData():
//
//	flow := internal.NewAuthFlow(client, cfg.FetchUserDataURL())
//	app := internal.New(
//	    internal.WithCookieSecret(secret),
//	    internal.WithSession(session.NewMemoryStore()),
//	    internal.WithHandlers(flow, dashboard{flow: flow}),
//	)
//
// # Error Handling
//
// Errors returned from handlers go to the ErrorHandler. The default one
// writes HTTPError messages as plain text and hides everything else behind
// a logged 500. Failures of the login flow and the resource cache are not
// errors: they end up as redirects or cleared cache slots.
//
// # Server Runtime
//
//	err := app.Run(":8080",
//	    internal.Logger(log),
//	    internal.ShutdownHook(db.Shutdown(pool)),
//	)
package internal
