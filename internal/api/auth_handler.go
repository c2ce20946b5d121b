package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coursehub/coursehub-api/internal/api/shared"
	"github.com/coursehub/coursehub-api/internal/service/auth"
)

// Authenticator exchanges credentials for tokens. *auth.Authenticator satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*auth.AuthResult, error)
	Introspect(ctx context.Context, token string) bool
}

// AuthHandler handles the token endpoints.
type AuthHandler struct {
	authenticator Authenticator
	logger        *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authenticator Authenticator, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authenticator: authenticator,
		logger:        logger.With("component", "auth_handler"),
	}
}

// Token handles POST /api/auth/token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate")
		return
	}

	shared.RespondWithResult(w, r, http.StatusOK, result)
}

// Introspect handles POST /api/auth/introspect. An invalid token is a normal
// result, not an error.
func (h *AuthHandler) Introspect(w http.ResponseWriter, r *http.Request) {
	var req IntrospectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	valid := h.authenticator.Introspect(r.Context(), req.Token)
	requestLogger(r, h.logger).Debug("token introspected", "valid", valid)

	shared.RespondWithResult(w, r, http.StatusOK, IntrospectResponse{Valid: valid})
}
