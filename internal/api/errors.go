package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/coursehub/coursehub-api/internal/api/shared"
	"github.com/coursehub/coursehub-api/internal/authz"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/service"
	"github.com/coursehub/coursehub-api/internal/service/auth"
	"github.com/coursehub/coursehub-api/internal/store"
	"github.com/go-playground/validator/v10"
)

// errCourseForbidden marks a policy failure on a course or one of its lectures,
// reported with its own code.
var errCourseForbidden = fmt.Errorf("course access: %w", authz.ErrForbidden)

// apiError is the client-facing form of an internal error.
type apiError struct {
	status  int
	code    shared.ErrorCode
	message string
}

// classify maps err to its client-facing form. Order matters: specific sentinels
// are checked before the general ones they wrap.
func classify(err error) (apiError, bool) {
	var verrs validator.ValidationErrors
	var field *domain.ValidationError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return apiError{http.StatusUnauthorized, shared.CodeUnauthenticated, "Token expired"}, true
	case errors.Is(err, auth.ErrMalformedToken),
		errors.Is(err, auth.ErrBadSignature):
		return apiError{http.StatusUnauthorized, shared.CodeUnauthenticated, "Invalid token"}, true
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, authz.ErrUnauthenticated):
		return apiError{http.StatusUnauthorized, shared.CodeUnauthenticated, "Unauthenticated"}, true

	case errors.Is(err, errCourseForbidden):
		return apiError{http.StatusForbidden, shared.CodePermissionCourseDenied, "Permission to course denied"}, true
	case errors.Is(err, authz.ErrForbidden):
		return apiError{http.StatusForbidden, shared.CodeUnauthorized, "You do not have permission"}, true

	case errors.Is(err, auth.ErrUserNotExisted),
		errors.Is(err, store.ErrUserNotFound):
		return apiError{http.StatusNotFound, shared.CodeUserNotExisted, "User not existed"}, true
	case errors.Is(err, store.ErrCourseNotFound):
		return apiError{http.StatusNotFound, shared.CodeCourseNotExisted, "Course not existed"}, true
	case errors.Is(err, service.ErrNoCourses):
		return apiError{http.StatusNotFound, shared.CodeCourseNotExisted, "No courses found"}, true
	case errors.Is(err, store.ErrLectureNotFound):
		return apiError{http.StatusNotFound, shared.CodeLectureNotExisted, "Lecture not existed"}, true
	case errors.Is(err, store.ErrNotFound):
		return apiError{http.StatusNotFound, shared.CodeUncategorized, "Resource not found"}, true

	case errors.Is(err, store.ErrUsernameExists):
		return apiError{http.StatusConflict, shared.CodeUserExisted, "User existed"}, true
	case errors.Is(err, store.ErrEmailExists):
		return apiError{http.StatusConflict, shared.CodeEmailExisted, "Email existed"}, true
	case errors.Is(err, store.ErrDuplicate):
		return apiError{http.StatusConflict, shared.CodeUncategorized, "Resource already exists"}, true
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return apiError{http.StatusConflict, shared.CodeInvalidStateTransition, "Invalid state transition"}, true

	case errors.Is(err, service.ErrInvalidResetCode):
		return apiError{http.StatusBadRequest, shared.CodeInvalidResetCode, "Invalid or expired reset code"}, true
	case errors.Is(err, domain.ErrRoleNotExisted):
		return apiError{http.StatusBadRequest, shared.CodeRoleNotExisted, "Role not existed"}, true
	case errors.Is(err, domain.ErrInvalidID):
		return apiError{http.StatusBadRequest, shared.CodeInvalidKey, "Invalid ID"}, true
	case errors.As(err, &field):
		return fieldError(field), true
	case errors.As(err, &verrs):
		return apiError{http.StatusBadRequest, shared.CodeInvalidKey, SanitizeValidationError(err)}, true
	case errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		isDecodeError(err):
		return apiError{http.StatusBadRequest, shared.CodeInvalidKey, "Invalid request format"}, true
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return apiError{http.StatusBadRequest, shared.CodeInvalidKey, "Invalid input"}, true

	case errors.Is(err, service.ErrFileMove):
		return apiError{http.StatusInternalServerError, shared.CodeFileMoveFailed, "Failed to move file"}, true
	case errors.Is(err, service.ErrFileStore):
		return apiError{http.StatusInternalServerError, shared.CodeUncategorized, "Failed to store file"}, true
	}
	return apiError{}, false
}

func fieldError(e *domain.ValidationError) apiError {
	code := shared.CodeInvalidKey
	switch e.Field {
	case "username":
		code = shared.CodeUsernameInvalid
	case "password":
		code = shared.CodePasswordInvalid
	}
	return apiError{http.StatusBadRequest, code, fmt.Sprintf("Invalid %s: %s", e.Field, e.Message)}
}

// isDecodeError catches the untyped errors encoding/json returns for unknown
// fields and truncated input.
func isDecodeError(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || strings.HasPrefix(err.Error(), "json: unknown field")
}

// MapErrorToStatusCode maps internal errors to HTTP status codes without leaking
// internal error types to clients. Unknown errors map to 500.
func MapErrorToStatusCode(err error) int {
	if e, ok := classify(err); ok {
		return e.status
	}
	return http.StatusInternalServerError
}

// MapErrorToCode maps internal errors to stable response codes.
func MapErrorToCode(err error) shared.ErrorCode {
	if e, ok := classify(err); ok {
		return e.code
	}
	return shared.CodeUncategorized
}

// GetSafeErrorMessage returns a message that is safe to show to clients.
func GetSafeErrorMessage(err error) string {
	if e, ok := classify(err); ok {
		return e.message
	}
	return "An unexpected error occurred"
}

// HandleAPIError writes the error response for err. defaultMsg is used for
// errors outside the known taxonomy so internal details never reach the client.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	e, ok := classify(err)
	if !ok {
		e = apiError{http.StatusInternalServerError, shared.CodeUncategorized, defaultMsg}
	}

	var opts []shared.ResponseOption
	if e.status == http.StatusUnauthorized || e.status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, e.status, e.code, e.message, err, opts...)
}

// SanitizeValidationError turns struct validation failures into a short
// message naming the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too short or too small"
	case "max", "lte":
		return "too long or too large"
	case "oneof":
		return "invalid value"
	case "base64":
		return "must be base64 encoded"
	default:
		return "validation failed"
	}
}
