// Package domain contains the core business entities for Pictor.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the user-account and image API.
package domain

import (
	"time"
)

// User represents a registered account in the system.
// Users authenticate with a username and password and receive a signed
// token that grants access to protected routes.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Name is the display name. Mutable via the change-name flow.
	// Constraints: 1-100 characters.
	Name string `json:"name"`

	// Username is the unique handle used for login.
	// Immutable after creation. Constraints: 1-100 characters.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This must never be exposed in API responses.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with creation timestamps set.
func NewUser(name, username, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Name:         name,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
