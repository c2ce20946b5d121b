package auth

import (
	"context"
	"time"

	"github.com/coursehub/coursehub-api/internal/domain"
)

// TokenService issues and verifies signed access tokens.
type TokenService interface {
	// Issue creates a signed token for user with its role as scope.
	Issue(ctx context.Context, user *domain.User) (IssuedToken, error)

	// Verify checks the token's structure, signature and expiry and returns its claims.
	// Errors are ErrMalformedToken, ErrBadSignature or ErrExpiredToken.
	Verify(ctx context.Context, token string) (*Claims, error)

	// Introspect reports whether the token has a valid signature and is not expired.
	Introspect(ctx context.Context, token string) bool
}

// IssuedToken is a signed token with its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Claims are the verified contents of an access token.
type Claims struct {
	Subject   string      `json:"sub"`
	Issuer    string      `json:"iss"`
	Scope     domain.Role `json:"scope"`
	IssuedAt  time.Time   `json:"iat"`
	ExpiresAt time.Time   `json:"exp"`
	ID        string      `json:"jti"`
}
