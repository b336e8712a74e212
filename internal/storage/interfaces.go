// Package storage defines interfaces for image storage backends.
// The storage layer is responsible for persisting and retrieving raw image
// bytes; metadata stays with the caller.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates the requested object does not exist in the backend.
var ErrNotFound = errors.New("object not found in storage")

// Backend defines the interface for storage backends.
// Implementations include local filesystem and S3-compatible object stores.
// The interface is stateless and safe for concurrent use.
type Backend interface {
	// Store writes content under the given key, overwriting any existing
	// object. size is the expected length in bytes; contentType is stored
	// as object metadata where the backend supports it.
	Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Retrieve returns a reader for the object at key.
	// The caller must close the returned ReadCloser.
	// Returns ErrNotFound if the object doesn't exist.
	Retrieve(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at key.
	// Returns ErrNotFound if the object doesn't exist.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object with the given key exists.
	Exists(ctx context.Context, key string) (bool, error)
}
