package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrDecrypt   = errors.New("cookie: decryption failed")
	ErrEncode    = errors.New("cookie: failed to encode value")
)

// Manager reads and writes plain, signed and encrypted cookies sharing
// one set of attributes.
type Manager struct {
	secret   []byte
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager. secret keys both signing and encryption
// and must be at least 32 bytes.
func New(secret string, opts ...Option) (*Manager, error) {
	if len(secret) < 32 {
		return nil, ErrBadSecret
	}
	m := &Manager{
		secret:   []byte(secret),
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the cookie path. Default: "/".
func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithSameSite sets the SameSite attribute. Default: Lax, which the
// provider callback redirect needs to carry the cookies.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set sets a plain cookie. maxAge 0 makes it a browser-session cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// GetSigned returns the value of a cookie written by SetSigned.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	// base64(value).base64(hmac(name|value))
	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}
	if !hmac.Equal(sig, m.sign(name, value)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

// SetSigned sets a cookie whose value is readable by the client but
// cannot be altered or moved to another cookie name.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(m.sign(name, []byte(value)))
	http.SetCookie(w, m.cookie(name, encoded, maxAge))
}

// GetJSON decrypts a cookie written by SetJSON into dest.
func (m *Manager) GetJSON(r *http.Request, name string, dest any) error {
	raw, err := m.Get(r, name)
	if err != nil {
		return err
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return ErrDecrypt
	}
	plaintext, err := m.decrypt(name, data)
	if err != nil {
		return errors.Join(ErrDecrypt, err)
	}
	if err := json.Unmarshal(plaintext, dest); err != nil {
		return errors.Join(ErrDecrypt, err)
	}
	return nil
}

// SetJSON encrypts the JSON encoding of value into a cookie.
func (m *Manager) SetJSON(w http.ResponseWriter, name string, value any, maxAge int) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Join(ErrEncode, err)
	}
	ciphertext, err := m.encrypt(name, data)
	if err != nil {
		return errors.Join(ErrEncode, err)
	}
	http.SetCookie(w, m.cookie(name, base64.RawURLEncoding.EncodeToString(ciphertext), maxAge))
	return nil
}

// PopJSON reads an encrypted cookie and expires it, so the value can be
// used once.
func (m *Manager) PopJSON(w http.ResponseWriter, r *http.Request, name string, dest any) error {
	err := m.GetJSON(r, name, dest)
	if !errors.Is(err, ErrNotFound) {
		m.Delete(w, name)
	}
	return err
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}

func (m *Manager) sign(name string, value []byte) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(name))
	mac.Write([]byte{'|'})
	mac.Write(value)
	return mac.Sum(nil)
}
