package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure. It is deliberately opaque:
	// an unknown identifier and a wrong password produce the same error.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates the account matched but is inactive.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrInvalidToken covers malformed, expired and blacklisted tokens uniformly.
	ErrInvalidToken = errors.New("invalid token")
	// ErrPermissionDenied is the single authorization denial. It never
	// distinguishes an unregistered route from a missing grant.
	ErrPermissionDenied = errors.New("permission denied")
)
