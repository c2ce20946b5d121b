package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coursehub/coursehub-api/internal/api/shared"
	"github.com/coursehub/coursehub-api/internal/redact"
	"github.com/coursehub/coursehub-api/internal/service"
)

// PasswordResetter issues and redeems reset codes. *service.PasswordResetService
// satisfies it.
type PasswordResetter interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// UserHandler handles account endpoints.
type UserHandler struct {
	users  service.UserService
	resets PasswordResetter
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(users service.UserService, resets PasswordResetter, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  users,
		resets: resets,
		logger: logger.With("component", "user_handler"),
	}
}

// Register handles POST /api/user.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	shared.RespondWithResult(w, r, http.StatusCreated, user)
}

// MyInfo handles GET /api/user/myinfo.
func (h *UserHandler) MyInfo(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetMyInfo(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load user")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, user)
}

// GetUser handles GET /api/user/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load user")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, user)
}

// ListUsers handles GET /api/admin/users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, users)
}

// UpdateUser handles PUT /api/user/{id}.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, service.UpdateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/user/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, MessageResponse{Message: "User has been deleted"})
}

// AssignRole handles POST /api/user/{id}/assign-role.
func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req AssignRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.AssignRole(r.Context(), id, req.Role)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to assign role")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, user)
}

// ForgotPassword handles POST /api/user/forgot-password.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.resets.RequestReset(r.Context(), req.Email); err != nil {
		HandleAPIError(w, r, err, "Failed to send reset code")
		return
	}

	requestLogger(r, h.logger).Info("reset code sent", "email", redact.Email(req.Email))
	shared.RespondWithResult(w, r, http.StatusOK, MessageResponse{Message: "Reset code has been sent to your email"})
}

// ResetPassword handles POST /api/user/reset-password.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.resets.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "Failed to reset password")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, MessageResponse{Message: "Password has been reset"})
}
