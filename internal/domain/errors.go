// Package domain contains the core business entities for Pictor.
package domain

import (
	"errors"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same username exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Image Errors
	// ===========================================

	// ErrImageNotFound indicates the requested image does not exist.
	ErrImageNotFound = errors.New("image not found")

	// ErrImageEmpty indicates an upload with no content.
	ErrImageEmpty = errors.New("image content is empty")

	// ErrImageTooLarge indicates the upload exceeds the configured size limit.
	ErrImageTooLarge = errors.New("image exceeds maximum allowed size")

	// ErrUnsupportedImageType indicates the content type is not an image.
	ErrUnsupportedImageType = errors.New("unsupported image content type")
)
