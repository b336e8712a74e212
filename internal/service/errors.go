// Package service provides business logic services for Pictor.
package service

import "errors"

// Common service errors.
var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Rate limiting
	ErrTooManyAttempts = errors.New("too many login attempts")

	// Image errors
	ErrImageEmpty           = errors.New("image content is empty")
	ErrImageTooLarge        = errors.New("image exceeds maximum allowed size")
	ErrUnsupportedImageType = errors.New("unsupported image content type")

	// General errors
	ErrInternalError = errors.New("internal server error")
)

// ValidationError carries field-level validation failures.
// Fields maps a field name to a human-readable problem description.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError creates a ValidationError from field problems.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}
