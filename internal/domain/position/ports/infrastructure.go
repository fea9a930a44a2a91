package ports

import "time"

// Clock provides time-related functionality.
// This abstraction enables testing with controlled time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// TokenStore holds the bearer token of the current session.
type TokenStore interface {
	// Get returns the stored token, or "" when none is stored.
	Get() (string, error)

	// Save replaces the stored token.
	Save(token string) error

	// Remove deletes the stored token. Removing a missing token is not an error.
	Remove() error
}
