package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when no user is signed in.
	ErrNoToken = errors.New("no saved token")
	// ErrTokenExpired is returned when the saved token's exp claim has passed.
	ErrTokenExpired = errors.New("saved token has expired")
)

// Claims are the fields the server puts in its tokens. The client never
// verifies the signature; it only reads them.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the token payload without verifying it.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the token carries an exp claim that is past at now.
// Tokens without exp never expire on the client side.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// TokenSource reads the bearer token from a Store at call time.
type TokenSource struct {
	Store Store
	Now   func() time.Time
}

// Token returns the saved token. Tokens that are opaque to the JWT parser are
// passed through unchanged; the server decides whether they are valid.
func (ts TokenSource) Token() (string, error) {
	token, err := ts.Store.Get(KeyToken)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoToken
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return token, nil
	}
	now := time.Now
	if ts.Now != nil {
		now = ts.Now
	}
	if claims.Expired(now()) {
		return "", ErrTokenExpired
	}
	return token, nil
}
