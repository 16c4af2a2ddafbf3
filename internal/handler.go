package internal

// Handler declares routes on a router.
//
// Example:
//
//	type DashboardHandler struct {
//	    flow *identity.AuthFlow
//	}
//
//	func (h *DashboardHandler) Routes(r identity.Router) {
//	    r.GET("/", h.index, h.flow.UserRequired())
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error triggers the error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing,
// or wrap the response.
//
// Example:
//
//	func RequireAccount(next identity.HandlerFunc) identity.HandlerFunc {
//	    return func(c identity.Context) error {
//	        u, _ := c.UserData()
//	        if len(u.Accounts) == 0 {
//	            return c.Redirect(http.StatusFound, "/accounts/new")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
