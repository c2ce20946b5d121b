package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coursehub/coursehub-api/internal/api/shared"
	"github.com/coursehub/coursehub-api/internal/authz"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/coursehub/coursehub-api/internal/service/auth"
)

// TokenVerifier verifies bearer tokens. auth.TokenService satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthMiddleware authenticates requests with bearer access tokens.
type AuthMiddleware struct {
	tokens TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the Authorization header and stores the token's
// principal on the request context. Requests without a valid token get 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, shared.CodeUnauthenticated,
				"Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
			shared.RespondWithError(w, r, http.StatusUnauthorized, shared.CodeUnauthenticated,
				"Invalid authorization format")
			return
		}

		claims, err := m.tokens.Verify(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, shared.CodeUnauthenticated, "Token expired")
			case errors.Is(err, auth.ErrMalformedToken), errors.Is(err, auth.ErrBadSignature):
				shared.RespondWithError(w, r, http.StatusUnauthorized, shared.CodeUnauthenticated, "Invalid token")
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, shared.CodeUncategorized,
					"Authentication error", err)
			}
			return
		}

		ctx := authz.WithPrincipal(r.Context(), authz.Principal{
			Username: claims.Subject,
			Role:     claims.Scope,
		})
		log := logger.FromContextOrDefault(ctx, slog.Default()).With("principal", claims.Subject)
		ctx = logger.WithContext(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects requests whose principal holds none of roles. It must run
// after Authenticate.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	policy := authz.HasRole(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := authz.Enforce(r.Context(), policy); err != nil {
				if errors.Is(err, authz.ErrUnauthenticated) {
					shared.RespondWithError(w, r, http.StatusUnauthorized, shared.CodeUnauthenticated,
						"Unauthenticated")
					return
				}
				shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, shared.CodeUnauthorized,
					"You do not have permission", err, shared.WithElevatedLogLevel())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
