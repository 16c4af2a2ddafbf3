package session

import "errors"

// Session errors.
var (
	// ErrNotConfigured is returned when session functionality is used
	// but WithSession was not configured on the app.
	ErrNotConfigured = errors.New("session: not configured")

	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session has expired.
	ErrExpired = errors.New("session: expired")

	// ErrInvalidToken is returned when a session token is invalid.
	ErrInvalidToken = errors.New("session: invalid token")

	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("session: store closed")

	// ErrMarshal is returned when a session cannot be encoded for storage.
	ErrMarshal = errors.New("session: failed to marshal session")

	// ErrUnmarshal is returned when stored session data cannot be decoded.
	ErrUnmarshal = errors.New("session: failed to unmarshal session")
)
