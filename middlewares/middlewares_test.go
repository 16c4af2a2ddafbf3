package middlewares_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrymomot/identity/internal"
)

// routes adapts a plain function to internal.Handler.
type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

// syncBuffer collects log output written from handler code.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// do runs a single GET through an app serving h at "/" behind mw.
func do(t *testing.T, h internal.HandlerFunc, opts []internal.Option, mw ...internal.Middleware) *httptest.ResponseRecorder {
	t.Helper()

	opts = append(opts, internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/", h, mw...)
	})))
	app := internal.New(opts...)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}
