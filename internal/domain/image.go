// Package domain contains the core business entities for Pictor.
package domain

import (
	"time"
)

// Image represents a stored image upload.
// The raw bytes live in the storage backend; this struct carries the
// metadata returned to the uploader.
type Image struct {
	// Key is the storage key under which the image bytes are stored.
	// Format: images/YYYY/MM/DD/<uuid><ext>
	Key string `json:"key"`

	// OwnerID is the ID of the user who uploaded the image.
	OwnerID int64 `json:"owner_id"`

	// ContentType is the MIME type reported for the upload.
	ContentType string `json:"content_type"`

	// Size is the stored size in bytes.
	Size int64 `json:"size"`

	// UploadedAt is the timestamp of the upload.
	UploadedAt time.Time `json:"uploaded_at"`
}
