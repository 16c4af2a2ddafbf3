package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AccessToken is the OAuth1 access token pair negotiated with the identity provider.
type AccessToken struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

// UserData is the profile projection stored after a successful login.
type UserData struct {
	UUID     string   `json:"uuid"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Accounts []string `json:"accounts"` // account UUIDs in provider order
}

// AccountIDs returns a copy of the account identifiers.
func (u UserData) AccountIDs() []string {
	ids := make([]string, len(u.Accounts))
	copy(ids, u.Accounts)
	return ids
}

// Session is the per-browser state shared by the auth flow and the resource fetcher.
type Session struct {
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	AccessToken *AccessToken         `json:"access_token,omitempty"`
	UserData    *UserData            `json:"user_data,omitempty"`
	Resources   map[string]*Resource `json:"resources,omitempty"` // nil value = cleared slot

	ID    string `json:"id"`    // UUID
	Token string `json:"token"` // Cookie token (different from ID)

	dirty bool
	isNew bool
}

// New creates a new session with a random ID and the given cookie token.
func New(token string, expiresAt time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		isNew:     true,
		dirty:     true,
	}
}

// IsAuthenticated returns true if the session carries user data.
func (s *Session) IsAuthenticated() bool {
	return s.UserData != nil
}

// GetAccessToken returns the stored access token pair.
func (s *Session) GetAccessToken() (AccessToken, bool) {
	if s.AccessToken == nil {
		return AccessToken{}, false
	}
	return *s.AccessToken, true
}

// SetAccessToken stores the access token pair.
func (s *Session) SetAccessToken(t AccessToken) {
	s.AccessToken = &t
	s.dirty = true
}

// PopAccessToken removes and returns the access token. Absent keys are a no-op.
func (s *Session) PopAccessToken() (AccessToken, bool) {
	t, ok := s.GetAccessToken()
	if ok {
		s.AccessToken = nil
		s.dirty = true
	}
	return t, ok
}

// GetUserData returns the stored user data.
func (s *Session) GetUserData() (UserData, bool) {
	if s.UserData == nil {
		return UserData{}, false
	}
	return *s.UserData, true
}

// SetUserData stores the user data.
func (s *Session) SetUserData(u UserData) {
	if u.Accounts == nil {
		u.Accounts = []string{}
	}
	s.UserData = &u
	s.dirty = true
}

// PopUserData removes and returns the user data. Absent keys are a no-op.
func (s *Session) PopUserData() (UserData, bool) {
	u, ok := s.GetUserData()
	if ok {
		s.UserData = nil
		s.dirty = true
	}
	return u, ok
}

// Resource returns the cache slot for key. The second result reports whether
// the slot exists; an existing slot may hold nil when it was cleared.
func (s *Session) Resource(key string) (*Resource, bool) {
	if s.Resources == nil {
		return nil, false
	}
	r, ok := s.Resources[key]
	return r, ok
}

// SetResource replaces the cache slot for key. A nil r clears the slot
// while keeping it distinguishable from a slot that was never filled.
func (s *Session) SetResource(key string, r *Resource) {
	if s.Resources == nil {
		s.Resources = make(map[string]*Resource)
	}
	s.Resources[key] = r
	s.dirty = true
}

// PopResource removes the cache slot for key.
func (s *Session) PopResource(key string) (*Resource, bool) {
	r, ok := s.Resource(key)
	if ok {
		delete(s.Resources, key)
		s.dirty = true
	}
	return r, ok
}

// ClearResources drops every cache slot.
func (s *Session) ClearResources() {
	if len(s.Resources) == 0 {
		return
	}
	s.Resources = nil
	s.dirty = true
}

// IsDirty returns true if the session has unsaved changes.
func (s *Session) IsDirty() bool {
	return s.dirty
}

// ClearDirty marks the session as clean (saved).
func (s *Session) ClearDirty() {
	s.dirty = false
}

// MarkDirty marks the session as needing to be saved.
func (s *Session) MarkDirty() {
	s.dirty = true
}

// IsNew returns true if the session was just created.
func (s *Session) IsNew() bool {
	return s.isNew
}

// ClearNew marks the session as no longer new.
func (s *Session) ClearNew() {
	s.isNew = false
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Marshal encodes the session for storage backends.
func Marshal(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

// Unmarshal decodes a session previously encoded with Marshal.
// The returned session is clean.
func Unmarshal(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Join(ErrUnmarshal, err)
	}
	return &s, nil
}
