// Package common defines shared constants and sentinel errors used across
// Confidant components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Account lifecycle errors, surfaced to the visitor as flash messages.
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownUser        = errors.New("unknown user")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Session token errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Voice endpoint validation.
	ErrMissingMessage = errors.New("message is required")
)
