package api

// TokenRequest is the body of POST /api/auth/token.
type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// IntrospectRequest is the body of POST /api/auth/introspect.
type IntrospectRequest struct {
	Token string `json:"token" validate:"required"`
}

// IntrospectResponse reports whether a token is currently valid.
type IntrospectResponse struct {
	Valid bool `json:"valid"`
}

// RegisterRequest is the body of POST /api/user. Length rules are enforced by the
// domain so that username and password failures keep their own codes.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// UpdateUserRequest is the body of PUT /api/user/{id}. Omitted fields are unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email"     validate:"omitempty,email"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
}

// AssignRoleRequest is the body of POST /api/user/{id}/assign-role.
type AssignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ForgotPasswordRequest is the body of POST /api/user/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /api/user/reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Code        string `json:"code"        validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// CourseRequest is the body of course create and update. Image is optional
// base64 image data; ImageName supplies its extension.
type CourseRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price"       validate:"gte=0"`
	Image       string `json:"image"       validate:"omitempty,base64"`
	ImageName   string `json:"image_name"  validate:"required_with=Image"`
}

// LectureRequest is the body of lecture create and update. Video names a file
// already uploaded to the pending video area.
type LectureRequest struct {
	Title   string `json:"title"   validate:"required"`
	Content string `json:"content"`
	Video   string `json:"video"`
}

// RejectRequest is the body of the admin reject endpoints.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// MessageResponse carries a human readable acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewestCourseResponse is the result of GET /api/courses/mine/newest.
type NewestCourseResponse struct {
	CourseID int64 `json:"course_id"`
}
