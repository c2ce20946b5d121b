package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursehub/coursehub-api/internal/config"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the minimum HS512 signing secret length in bytes, the
// SHA-512 output size required by RFC 7518.
const MinSecretLength = 64

// hmacTokenService is an implementation of TokenService using HMAC-SHA512 signing.
type hmacTokenService struct {
	signingKey    []byte
	issuer        string
	tokenLifetime time.Duration
	timeFunc      func() time.Time // Injectable for testing
}

// jwtScopeClaims is the wire form of the token payload.
type jwtScopeClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a TokenService from the startup configuration. The
// secret is copied, so later changes to cfg do not affect issued or verified tokens.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	return NewTokenServiceWithClock(cfg, time.Now)
}

// NewTokenServiceWithClock is NewTokenService with an explicit clock.
func NewTokenServiceWithClock(cfg config.AuthConfig, now func() time.Time) (TokenService, error) {
	if len(cfg.JWTSecret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.TokenLifetimeMinutes <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}
	if now == nil {
		now = time.Now
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "localhost:8080"
	}

	return &hmacTokenService{
		signingKey:    []byte(cfg.JWTSecret),
		issuer:        issuer,
		tokenLifetime: cfg.TokenLifetime(),
		timeFunc:      now,
	}, nil
}

// Issue creates a signed token with the user's name as subject and role as scope.
func (s *hmacTokenService) Issue(ctx context.Context, user *domain.User) (IssuedToken, error) {
	log := logger.FromContext(ctx)
	if user == nil || user.Username == "" {
		return IssuedToken{}, fmt.Errorf("cannot issue token: user has no username")
	}

	now := s.timeFunc()
	expiresAt := now.Add(s.tokenLifetime)
	claims := jwtScopeClaims{
		Scope: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign access token",
			"error", err,
			"username", user.Username,
			"signing_method", jwt.SigningMethodHS512.Name)
		return IssuedToken{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	// exp is encoded with second precision.
	return IssuedToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify parses the token and checks signature then expiry. An expired token
// therefore always had a valid signature.
func (s *hmacTokenService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return nil, ErrMalformedToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.timeFunc),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtScopeClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			log.Debug("token verification failed: malformed token", "error", err)
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			log.Debug("token verification failed: invalid signature", "error", err)
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token verification failed: token expired", "error", err)
			return nil, ErrExpiredToken
		default:
			// Missing exp or another claim problem on a correctly signed token.
			log.Debug("token verification failed: invalid claims",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrMalformedToken
		}
	}

	claims, ok := token.Claims.(*jwtScopeClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		log.Debug("token verification failed: invalid claims")
		return nil, ErrMalformedToken
	}

	out := &Claims{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		Scope:     domain.Role(claims.Scope),
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}

	log.Debug("access token verified",
		"subject", out.Subject,
		"token_id", out.ID,
		"expiry", out.ExpiresAt)
	return out, nil
}

// Introspect implements TokenService.
func (s *hmacTokenService) Introspect(ctx context.Context, tokenString string) bool {
	_, err := s.Verify(ctx, tokenString)
	return err == nil
}
