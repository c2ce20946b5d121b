package auth

import "errors"

// Token errors. Each describes one failed check, so callers can tell a forged
// token from an expired one.
var (
	// ErrMalformedToken indicates the token is not a structurally valid JWT
	ErrMalformedToken = errors.New("malformed authentication token")

	// ErrBadSignature indicates the signature does not match the process secret
	// or the token uses an unexpected signing algorithm
	ErrBadSignature = errors.New("authentication token signature is invalid")

	// ErrExpiredToken indicates the signature is valid but the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")
)

// Credential errors.
var (
	// ErrUserNotExisted is returned when authenticating an unknown username
	ErrUserNotExisted = errors.New("user does not exist")

	// ErrUnauthenticated is returned when the supplied credentials do not match
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPasswordMismatch is returned by Compare when the plaintext does not match
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrMalformedHash is returned by Compare when the stored hash cannot be parsed
	ErrMalformedHash = errors.New("malformed password hash")
)
