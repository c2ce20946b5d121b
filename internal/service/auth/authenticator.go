package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/coursehub/coursehub-api/internal/store"
)

// UserLookup finds users by username. store.UserStore satisfies it.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AuthResult is the outcome of a successful authentication.
type AuthResult struct {
	Token         string    `json:"token"`
	Authenticated bool      `json:"authenticated"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Authenticator exchanges username/password credentials for an access token.
type Authenticator struct {
	users  UserLookup
	hasher PasswordHasher
	tokens TokenService
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(users UserLookup, hasher PasswordHasher, tokens TokenService) (*Authenticator, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil", domain.ErrValidation)
	}
	return &Authenticator{users: users, hasher: hasher, tokens: tokens}, nil
}

// Authenticate verifies credentials and issues a token. An unknown username
// returns ErrUserNotExisted and a wrong password returns ErrUnauthenticated.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	log := logger.FromContext(ctx)

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("authentication failed: unknown user", "username", username)
			return nil, ErrUserNotExisted
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := a.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, ErrMalformedHash) {
			log.Error("stored password hash is malformed", "user_id", user.ID)
		} else {
			log.Debug("authentication failed: password mismatch", "user_id", user.ID)
		}
		return nil, ErrUnauthenticated
	}

	issued, err := a.tokens.Issue(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info("user authenticated", "user_id", user.ID, "role", user.Role)
	return &AuthResult{Token: issued.Token, Authenticated: true, ExpiresAt: issued.ExpiresAt}, nil
}

// Introspect reports whether token is currently valid.
func (a *Authenticator) Introspect(ctx context.Context, token string) bool {
	return a.tokens.Introspect(ctx, token)
}
