// Package storage defines interfaces for image storage backends.
package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImageKey generates a storage key for an uploaded image.
// Keys are sharded by upload date so a single directory (or S3 prefix)
// never accumulates unbounded entries.
//
// Example: images/2026/09/01/8f14e45f-ceea-4e6a-9d2a-93c2b3f7a3c1.png
func ImageKey(now time.Time, ext string) string {
	return fmt.Sprintf("images/%04d/%02d/%02d/%s%s",
		now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}
