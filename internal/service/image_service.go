// Package service provides business logic services for Pictor.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/pictor/internal/domain"
	"github.com/prn-tf/pictor/internal/storage"
)

// ImageService handles authenticated image uploads.
type ImageService struct {
	backend storage.Backend
	maxSize int64
	logger  zerolog.Logger
}

// NewImageService creates a new ImageService.
// maxSize caps the accepted upload size in bytes; zero means no cap.
func NewImageService(backend storage.Backend, maxSize int64, logger zerolog.Logger) *ImageService {
	return &ImageService{
		backend: backend,
		maxSize: maxSize,
		logger:  logger.With().Str("service", "image").Logger(),
	}
}

// UploadInput contains the data for an image upload.
type UploadInput struct {
	OwnerID     int64
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Upload validates and stores an image, returning its metadata.
func (s *ImageService) Upload(ctx context.Context, input UploadInput) (*domain.Image, error) {
	if input.Size <= 0 {
		return nil, ErrImageEmpty
	}
	if s.maxSize > 0 && input.Size > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrImageTooLarge, input.Size, s.maxSize)
	}

	contentType := normalizeContentType(input.ContentType)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImageType, input.ContentType)
	}

	now := time.Now().UTC()
	key := storage.ImageKey(now, extensionFor(input.Filename, contentType))

	if err := s.backend.Store(ctx, key, input.Content, input.Size, contentType); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to store image")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("owner_id", input.OwnerID).
		Str("key", key).
		Int64("size", input.Size).
		Str("content_type", contentType).
		Msg("image uploaded")

	return &domain.Image{
		Key:         key,
		OwnerID:     input.OwnerID,
		ContentType: contentType,
		Size:        input.Size,
		UploadedAt:  now,
	}, nil
}

// Retrieve returns a reader for a stored image.
func (s *ImageService) Retrieve(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.backend.Retrieve(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrImageNotFound
		}
		s.logger.Error().Err(err).Str("key", key).Msg("failed to retrieve image")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return rc, nil
}

// normalizeContentType strips parameters from a MIME type and lowercases it.
func normalizeContentType(contentType string) string {
	parsed, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return parsed
}

// extensionFor picks a file extension from the original filename, falling
// back to one derived from the content type.
func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
