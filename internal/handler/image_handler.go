// Package handler provides HTTP handlers for the Pictor API.
package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/pictor/internal/auth"
	"github.com/prn-tf/pictor/internal/metrics"
	"github.com/prn-tf/pictor/internal/service"
)

// uploadFieldName is the multipart form field carrying the image.
const uploadFieldName = "image"

// ImageHandler handles authenticated image uploads.
type ImageHandler struct {
	imageService *service.ImageService
	maxBodySize  int64
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(imageService *service.ImageService, maxBodySize int64, m *metrics.Metrics, logger zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		maxBodySize:  maxBodySize,
		metrics:      m,
		logger:       logger.With().Str("handler", "image").Logger(),
	}
}

// Upload handles POST /images/uploads with a multipart "image" field.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token provided!")
		return
	}

	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid image upload!")
		return
	}
	defer file.Close()

	image, err := h.imageService.Upload(r.Context(), service.UploadInput{
		OwnerID:     claims.UserID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		writeServiceError(w, err, "User not found!", "Invalid credentials!")
		return
	}

	if h.metrics != nil {
		h.metrics.AddUploadBytes(image.Size)
	}

	writeJSON(w, http.StatusCreated, apiResponse{
		Message: "Image uploaded successfully!",
		Key:     image.Key,
	})
}
