// Package repository defines data access interfaces for Pictor.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/pictor/internal/domain"
)

// ListOptions contains pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// ListResult contains a page of items and the total count.
type ListResult[T any] struct {
	Items []*T
	Total int64
}

// UserRepository defines the interface for user data access.
//
// The users table carries a unique constraint on username; Create returns
// domain.ErrUserAlreadyExists when that constraint is violated, which is
// the race-safety backstop for concurrent sign-ups.
type UserRepository interface {
	// Create creates a new user and assigns its ID.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// UpdateName updates the display name of a user.
	UpdateName(ctx context.Context, id int64, name string) error

	// UpdatePassword replaces the stored password hash of a user.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// Delete deletes a user by ID.
	Delete(ctx context.Context, id int64) error

	// List returns all users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// DatabaseHealth is an interface for database health checks.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
