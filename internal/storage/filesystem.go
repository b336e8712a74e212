// Package storage defines interfaces for image storage backends.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// FilesystemBackend stores objects as files under a base directory.
// Keys map directly to relative paths; path traversal is rejected.
type FilesystemBackend struct {
	baseDir string
	logger  zerolog.Logger
}

// NewFilesystemBackend creates a filesystem backend rooted at baseDir,
// creating the directory if needed.
func NewFilesystemBackend(baseDir string, logger zerolog.Logger) (*FilesystemBackend, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FilesystemBackend{
		baseDir: baseDir,
		logger:  logger.With().Str("storage", "filesystem").Logger(),
	}, nil
}

// resolve maps a key to an absolute path under the base directory.
func (b *FilesystemBackend) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(b.baseDir, cleaned), nil
}

// Store writes content to a temp file and renames it into place, so a
// partially written object is never visible under its final key.
func (b *FilesystemBackend) Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write object: %w", err)
	}
	if size > 0 && written != size {
		os.Remove(tmpName)
		return fmt.Errorf("short write: expected %d bytes, wrote %d", size, written)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize object: %w", err)
	}

	b.logger.Debug().Str("key", key).Int64("size", written).Msg("object stored")
	return nil
}

// Retrieve returns a reader for the object at key.
func (b *FilesystemBackend) Retrieve(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

// Delete removes the object at key.
func (b *FilesystemBackend) Delete(ctx context.Context, key string) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Exists checks if an object with the given key exists.
func (b *FilesystemBackend) Exists(ctx context.Context, key string) (bool, error) {
	path, err := b.resolve(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

// Ensure FilesystemBackend implements Backend.
var _ Backend = (*FilesystemBackend)(nil)
