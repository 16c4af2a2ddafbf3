package session

import (
	"encoding/json"
	"net/http"
	"time"
)

// Resource is a cached provider resource kept in the session.
// Entries are replaced on every fetch outcome, never mutated in place.
type Resource struct {
	Expires *int64          `json:"expires,omitempty"` // epoch seconds; nil = always revalidate
	Data    json.RawMessage `json:"data,omitempty"`
	ETag    string          `json:"etag,omitempty"`
	Status  int             `json:"status"`
}

// UnauthorizedResource returns the marker stored when the resource server
// rejects the middle-tier credentials.
func UnauthorizedResource() *Resource {
	return &Resource{Status: http.StatusUnauthorized}
}

// Unauthorized reports whether r is the unauthorized marker.
func (r *Resource) Unauthorized() bool {
	return r != nil && r.Status == http.StatusUnauthorized
}

// Fresh reports whether r may be served without contacting the remote.
func (r *Resource) Fresh(now time.Time) bool {
	return r != nil && r.Expires != nil && now.Unix() < *r.Expires
}

// Decode unmarshals the cached payload into dest.
func (r *Resource) Decode(dest any) error {
	if r == nil || len(r.Data) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(r.Data, dest)
}
