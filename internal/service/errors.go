package service

import "errors"

// Service errors checked by callers with errors.Is. The API layer maps them to
// status codes.
var (
	// ErrFileMove indicates a lecture video could not be published. The lecture
	// keeps its PENDING state.
	ErrFileMove = errors.New("failed to move video file")

	// ErrFileStore indicates an uploaded file could not be stored.
	ErrFileStore = errors.New("failed to store file")

	// ErrInvalidResetCode is returned for a reset code that is missing, used,
	// expired or does not match.
	ErrInvalidResetCode = errors.New("invalid or expired reset code")

	// ErrNoCourses is returned when a teacher asks for their newest course but has none.
	ErrNoCourses = errors.New("no courses found")
)
