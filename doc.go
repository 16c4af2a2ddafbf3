// Package identity provides the client side of a PassaporteWeb single
// sign-on: an OAuth1 login flow, a server-side session, an access gate for
// protected routes and a cache of provider resources kept in the session.
//
// # Quick Start
//
// Create an OAuth1 client for the provider, build the login flow and
// register it together with your own handlers:
//
//	client, err := oauth1.NewPassaporte(cfg.Passaporte)
//	if err != nil {
//	    return err
//	}
//
//	flow := identity.NewAuthFlow(client, cfg.Passaporte.FetchUserDataURL(),
//	    identity.WithEntrypoint("/dashboard"),
//	)
//
//	app := identity.New(
//	    identity.WithBaseURL("https://app.example.com"),
//	    identity.WithCookieSecret(cfg.CookieSecret),
//	    identity.WithSession(session.NewMemoryStore()),
//	    identity.WithHandlers(flow, handlers.NewDashboard(flow)),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Login Flow
//
// The flow mounts four routes under "/sso":
//
//	GET /sso/            refresh the user data with the stored access token
//	GET /sso/login       start the handshake, ?next= is kept for the callback
//	GET /sso/authorized  provider callback
//	GET /sso/logout      forget the user data and the access token
//
// The pending request token lives in an encrypted cookie for ten minutes.
// On a successful callback the session gets the access token and the user
// data, its token is rotated and the browser goes to next or the entrypoint.
// Inactive users are sent to the unauthenticated URL with nothing stored.
//
// # Access Gate
//
// UserRequired lets a request through when the session holds user data and
// otherwise redirects to the login route with next set to the requested URL:
//
//	func (h *Dashboard) Routes(r identity.Router) {
//	    r.GET("/dashboard", h.show, h.flow.UserRequired())
//	    r.GET("/accounts", h.accounts, h.flow.UserRequired(), identity.MiddleResources())
//	}
//
//	func (h *Dashboard) show(c identity.Context) error {
//	    u, _ := c.UserData()
//	    return c.JSON(200, u)
//	}
//
// # Resources
//
// With WithResourceFetcher the Resources middleware revalidates cached
// provider resources before the handler runs, using conditional requests.
// Handlers read them with c.Resource(key).
//
// # Shutdown
//
// The application handles SIGINT/SIGTERM for graceful shutdown.
// Register cleanup functions with ShutdownHook:
//
//	err := app.Run(":8080",
//	    identity.ShutdownHook(redis.Shutdown(client)),
//	)
package identity
