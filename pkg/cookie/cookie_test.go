package cookie_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrymomot/identity/pkg/cookie"
)

const testSecret = "this-is-a-32-byte-or-longer-key!"

func newManager(t *testing.T, opts ...cookie.Option) *cookie.Manager {
	t.Helper()
	m, err := cookie.New(testSecret, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return m
}

// roundTrip copies the cookies set on w into a new request.
func roundTrip(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	if _, err := cookie.New("short"); !errors.Is(err, cookie.ErrBadSecret) {
		t.Errorf("New(short) error = %v, want ErrBadSecret", err)
	}

	m := newManager(t, cookie.WithDomain("example.com"), cookie.WithPath("/app"), cookie.WithSecure(true), cookie.WithSameSite(http.SameSiteStrictMode))
	w := httptest.NewRecorder()
	m.Set(w, "name", "value", 60)

	c := w.Result().Cookies()[0]
	if c.Domain != "example.com" || c.Path != "/app" || !c.Secure || !c.HttpOnly || c.SameSite != http.SameSiteStrictMode {
		t.Errorf("unexpected attributes: %+v", c)
	}
}

func TestPlainCookies(t *testing.T) {
	m := newManager(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := m.Get(r, "missing"); !errors.Is(err, cookie.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	w := httptest.NewRecorder()
	m.Set(w, "name", "value", 3600)
	val, err := m.Get(roundTrip(w), "name")
	if err != nil || val != "value" {
		t.Errorf("Get() = %q, %v", val, err)
	}

	w = httptest.NewRecorder()
	m.Delete(w, "name")
	if c := w.Result().Cookies()[0]; c.MaxAge >= 0 {
		t.Errorf("Delete MaxAge = %d, want negative", c.MaxAge)
	}
}

func TestSignedCookies(t *testing.T) {
	m := newManager(t)

	w := httptest.NewRecorder()
	m.SetSigned(w, "session", "token-123", 0)

	val, err := m.GetSigned(roundTrip(w), "session")
	if err != nil || val != "token-123" {
		t.Fatalf("GetSigned() = %q, %v", val, err)
	}

	t.Run("tampered value", func(t *testing.T) {
		c := w.Result().Cookies()[0]
		c.Value = "dG9rZW4tNDU2" + c.Value[strings.Index(c.Value, "."):]
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(c)
		if _, err := m.GetSigned(r, "session"); !errors.Is(err, cookie.ErrBadSig) {
			t.Errorf("expected ErrBadSig, got %v", err)
		}
	})

	t.Run("moved to another name", func(t *testing.T) {
		c := w.Result().Cookies()[0]
		c.Name = "other"
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(c)
		if _, err := m.GetSigned(r, "other"); !errors.Is(err, cookie.ErrBadSig) {
			t.Errorf("expected ErrBadSig, got %v", err)
		}
	})

	t.Run("different secret", func(t *testing.T) {
		other, _ := cookie.New("another-32-byte-or-longer-secret!")
		if _, err := other.GetSigned(roundTrip(w), "session"); !errors.Is(err, cookie.ErrBadSig) {
			t.Errorf("expected ErrBadSig, got %v", err)
		}
	})
}

type pending struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

func TestJSONCookies(t *testing.T) {
	m := newManager(t)

	w := httptest.NewRecorder()
	if err := m.SetJSON(w, "oauth", pending{Token: "req", Secret: "sec"}, 600); err != nil {
		t.Fatalf("SetJSON() error: %v", err)
	}

	raw := w.Result().Cookies()[0].Value
	if strings.Contains(raw, "req") || strings.Contains(raw, "sec") {
		t.Error("cookie value is not encrypted")
	}

	var got pending
	if err := m.GetJSON(roundTrip(w), "oauth", &got); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if got.Token != "req" || got.Secret != "sec" {
		t.Errorf("GetJSON() = %+v", got)
	}

	t.Run("corrupted", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "oauth", Value: "AAAA"})
		if err := m.GetJSON(r, "oauth", &got); !errors.Is(err, cookie.ErrDecrypt) {
			t.Errorf("expected ErrDecrypt, got %v", err)
		}
	})

	t.Run("pop deletes", func(t *testing.T) {
		pw := httptest.NewRecorder()
		var popped pending
		if err := m.PopJSON(pw, roundTrip(w), "oauth", &popped); err != nil {
			t.Fatalf("PopJSON() error: %v", err)
		}
		if popped.Token != "req" {
			t.Errorf("PopJSON() = %+v", popped)
		}
		if c := pw.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
			t.Errorf("PopJSON did not expire the cookie: %+v", c)
		}
	})

	t.Run("pop missing", func(t *testing.T) {
		pw := httptest.NewRecorder()
		var popped pending
		err := m.PopJSON(pw, httptest.NewRequest(http.MethodGet, "/", nil), "oauth", &popped)
		if !errors.Is(err, cookie.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if len(pw.Result().Cookies()) != 0 {
			t.Error("PopJSON should not write a cookie when none was sent")
		}
	})
}
