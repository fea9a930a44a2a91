// Package session inspects bearer tokens and resolves the token to use for
// a request.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// Claims is what the client can learn from a token without the signing key.
type Claims struct {
	Subject   string     `json:"sub,omitempty"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
}

// Expired reports whether the token expired at or before now.
// Tokens without an expiry never expire client-side.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// Inspect decodes the claims of a JWT without verifying its signature.
// Verification belongs to the API; the client only reads sub and exp.
func Inspect(token string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, apperrors.WrapSafe(err, apperrors.KindValidation, "session.Inspect", "token is not a JWT")
	}

	out := &Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time.UTC()
		out.ExpiresAt = &t
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time.UTC()
		out.IssuedAt = &t
	}
	return out, nil
}

// TokenSource supplies the stored token. ports.TokenStore satisfies it.
type TokenSource interface {
	Get() (string, error)
}

// Resolver picks the bearer token for a request.
type Resolver struct {
	store TokenSource
	now   func() time.Time
}

// NewResolver creates a Resolver backed by store. A nil store means only
// explicitly provided tokens are used.
func NewResolver(store TokenSource, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{store: store, now: now}
}

// Resolve returns provided when set, else the stored token. A missing token
// or a JWT whose exp has passed is reported as unauthorized. Opaque tokens
// are passed through untouched.
func (r *Resolver) Resolve(provided string) (string, error) {
	token := provided
	if token == "" && r.store != nil {
		stored, err := r.store.Get()
		if err != nil {
			return "", err
		}
		token = stored
	}
	if token == "" {
		return "", apperrors.Unauthorized("session.Resolve", "No authentication token found")
	}

	if claims, err := Inspect(token); err == nil && claims.Expired(r.now()) {
		return "", apperrors.Unauthorized("session.Resolve", "Session expired").
			WithDetail("expired_at", claims.ExpiresAt.Format(time.RFC3339))
	}
	return token, nil
}
