package shared

// ErrorCode is the stable numeric code returned in error responses. Clients
// branch on the code rather than on the message text.
type ErrorCode int

const (
	CodeUncategorized          ErrorCode = 9999
	CodeInvalidKey             ErrorCode = 1001
	CodeUserExisted            ErrorCode = 1002
	CodeUsernameInvalid        ErrorCode = 1003
	CodePasswordInvalid        ErrorCode = 1004
	CodeUserNotExisted         ErrorCode = 1005
	CodeUnauthenticated        ErrorCode = 1006
	CodeUnauthorized           ErrorCode = 1007
	CodeEmailExisted           ErrorCode = 1008
	CodeRoleNotExisted         ErrorCode = 1009
	CodeCourseNotExisted       ErrorCode = 1010
	CodeLectureNotExisted      ErrorCode = 1011
	CodePermissionCourseDenied ErrorCode = 1012
	CodeInvalidResetCode       ErrorCode = 1013
	CodeInvalidStateTransition ErrorCode = 1014
	CodeFileMoveFailed         ErrorCode = 1015
)
