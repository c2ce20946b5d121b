package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/coursehub/coursehub-api/internal/api/shared"
	"github.com/coursehub/coursehub-api/internal/authz"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/service"
	"github.com/coursehub/coursehub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserHandler() (*UserHandler, *mockUserService, *mockResetter) {
	users := &mockUserService{}
	resets := &mockResetter{}
	return NewUserHandler(users, resets, discardLogger()), users, resets
}

func TestRegisterHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h, users, _ := newUserHandler()
		in := service.RegisterInput{Username: "alice", Email: "alice@example.com", FullName: "Alice", Password: "pw1"}
		users.On("Register", mock.Anything, in).
			Return(&domain.User{ID: 2, Username: "alice", Email: "alice@example.com", Role: domain.RoleStudent}, nil)

		w := serve(http.MethodPost, "/api/user", "/api/user",
			`{"username":"alice","email":"alice@example.com","full_name":"Alice","password":"pw1"}`, h.Register)

		require.Equal(t, http.StatusCreated, w.Code)
		var got map[string]interface{}
		resultBody(t, w, &got)
		assert.Equal(t, "alice", got["username"])
		assert.Equal(t, "STUDENT", got["role"])
		assert.NotContains(t, got, "hashed_password")
		assert.NotContains(t, w.Body.String(), "pw1")
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   shared.ErrorCode
	}{
		{"username taken", fmt.Errorf("failed to create user: %w", store.ErrUsernameExists),
			http.StatusConflict, shared.CodeUserExisted},
		{"email taken", store.ErrEmailExists, http.StatusConflict, shared.CodeEmailExisted},
		{"short username", domain.NewValidationError("username", "must be at least 3 characters", nil),
			http.StatusBadRequest, shared.CodeUsernameInvalid},
		{"short password", domain.NewValidationError("password", "must be at least 3 characters", nil),
			http.StatusBadRequest, shared.CodePasswordInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, users, _ := newUserHandler()
			users.On("Register", mock.Anything, mock.Anything).Return(nil, tc.err)

			w := serve(http.MethodPost, "/api/user", "/api/user",
				`{"username":"al","email":"al@example.com","password":"p"}`, h.Register)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantCode, errorBody(t, w).Code)
		})
	}

	t.Run("invalid email never reaches the service", func(t *testing.T) {
		h, users, _ := newUserHandler()
		w := serve(http.MethodPost, "/api/user", "/api/user",
			`{"username":"alice","email":"nope","password":"pw1"}`, h.Register)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid email: invalid email format", errorBody(t, w).Error)
		users.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestGetUserHandler(t *testing.T) {
	h, users, _ := newUserHandler()
	users.On("GetUser", mock.Anything, int64(2)).Return(&domain.User{ID: 2, Username: "alice"}, nil)
	users.On("GetUser", mock.Anything, int64(3)).Return(nil, authz.ErrForbidden)
	users.On("GetUser", mock.Anything, int64(9)).Return(nil, store.ErrUserNotFound)

	w := serve(http.MethodGet, "/api/user/{id}", "/api/user/2", "", h.GetUser)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodGet, "/api/user/{id}", "/api/user/3", "", h.GetUser)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, shared.CodeUnauthorized, errorBody(t, w).Code)

	w = serve(http.MethodGet, "/api/user/{id}", "/api/user/9", "", h.GetUser)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, shared.CodeUserNotExisted, errorBody(t, w).Code)

	for _, bad := range []string{"abc", "0", "-4"} {
		w = serve(http.MethodGet, "/api/user/{id}", "/api/user/"+bad, "", h.GetUser)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Equal(t, "Invalid ID", errorBody(t, w).Error)
	}
	users.AssertNumberOfCalls(t, "GetUser", 3)
}

func TestMyInfoAndListUsers(t *testing.T) {
	h, users, _ := newUserHandler()
	users.On("GetMyInfo", mock.Anything).Return(nil, authz.ErrUnauthenticated)
	users.On("ListUsers", mock.Anything).Return([]*domain.User{{ID: 1}, {ID: 2}}, nil)

	w := serve(http.MethodGet, "/api/user/myinfo", "/api/user/myinfo", "", h.MyInfo)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(http.MethodGet, "/api/admin/users", "/api/admin/users", "", h.ListUsers)
	require.Equal(t, http.StatusOK, w.Code)
	var got []domain.User
	resultBody(t, w, &got)
	assert.Len(t, got, 2)
}

func TestUpdateUserHandler(t *testing.T) {
	h, users, _ := newUserHandler()
	users.On("UpdateUser", mock.Anything, int64(2), mock.MatchedBy(func(in service.UpdateUserInput) bool {
		return in.Email == nil && in.FullName != nil && *in.FullName == "Alice A." && in.Password == nil
	})).Return(&domain.User{ID: 2, FullName: "Alice A."}, nil)

	w := serve(http.MethodPut, "/api/user/{id}", "/api/user/2", `{"full_name":"Alice A."}`, h.UpdateUser)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodPut, "/api/user/{id}", "/api/user/2", `{"email":"broken"}`, h.UpdateUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	users.AssertNumberOfCalls(t, "UpdateUser", 1)
}

func TestDeleteUserHandler(t *testing.T) {
	h, users, _ := newUserHandler()
	users.On("DeleteUser", mock.Anything, int64(2)).Return(nil)
	users.On("DeleteUser", mock.Anything, int64(3)).Return(authz.ErrForbidden)

	w := serve(http.MethodDelete, "/api/user/{id}", "/api/user/2", "", h.DeleteUser)
	require.Equal(t, http.StatusOK, w.Code)
	var msg MessageResponse
	resultBody(t, w, &msg)
	assert.Equal(t, "User has been deleted", msg.Message)

	w = serve(http.MethodDelete, "/api/user/{id}", "/api/user/3", "", h.DeleteUser)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAssignRoleHandler(t *testing.T) {
	h, users, _ := newUserHandler()
	users.On("AssignRole", mock.Anything, int64(2), "TEACHER").
		Return(&domain.User{ID: 2, Role: domain.RoleTeacher}, nil)
	users.On("AssignRole", mock.Anything, int64(2), "INVALID_ROLE").
		Return(nil, fmt.Errorf("%w: %q", domain.ErrRoleNotExisted, "INVALID_ROLE"))

	w := serve(http.MethodPost, "/api/user/{id}/assign-role", "/api/user/2/assign-role", `{"role":"TEACHER"}`, h.AssignRole)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodPost, "/api/user/{id}/assign-role", "/api/user/2/assign-role", `{"role":"INVALID_ROLE"}`, h.AssignRole)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shared.CodeRoleNotExisted, errorBody(t, w).Code)

	w = serve(http.MethodPost, "/api/user/{id}/assign-role", "/api/user/2/assign-role", `{}`, h.AssignRole)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shared.CodeInvalidKey, errorBody(t, w).Code)
}

func TestForgotPasswordHandler(t *testing.T) {
	h, _, resets := newUserHandler()
	resets.On("RequestReset", mock.Anything, "alice@example.com").Return(nil)
	resets.On("RequestReset", mock.Anything, "ghost@example.com").Return(store.ErrUserNotFound)
	resets.On("RequestReset", mock.Anything, "busy@example.com").
		Return(fmt.Errorf("failed to dispatch reset code: %w", errors.New("queue full")))

	w := serve(http.MethodPost, "/api/user/forgot-password", "/api/user/forgot-password",
		`{"email":"alice@example.com"}`, h.ForgotPassword)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodPost, "/api/user/forgot-password", "/api/user/forgot-password",
		`{"email":"ghost@example.com"}`, h.ForgotPassword)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, shared.CodeUserNotExisted, errorBody(t, w).Code)

	w = serve(http.MethodPost, "/api/user/forgot-password", "/api/user/forgot-password",
		`{"email":"busy@example.com"}`, h.ForgotPassword)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to send reset code", errorBody(t, w).Error)
}

func TestResetPasswordHandler(t *testing.T) {
	h, _, resets := newUserHandler()
	resets.On("ResetPassword", mock.Anything, "alice@example.com", "123456", "newpw").Return(nil)
	resets.On("ResetPassword", mock.Anything, "alice@example.com", "000000", "newpw").Return(service.ErrInvalidResetCode)

	w := serve(http.MethodPost, "/api/user/reset-password", "/api/user/reset-password",
		`{"email":"alice@example.com","code":"123456","newPassword":"newpw"}`, h.ResetPassword)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodPost, "/api/user/reset-password", "/api/user/reset-password",
		`{"email":"alice@example.com","code":"000000","newPassword":"newpw"}`, h.ResetPassword)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shared.CodeInvalidResetCode, errorBody(t, w).Code)

	w = serve(http.MethodPost, "/api/user/reset-password", "/api/user/reset-password",
		`{"email":"alice@example.com","code":"123456"}`, h.ResetPassword)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resets.AssertNumberOfCalls(t, "ResetPassword", 2)
}
