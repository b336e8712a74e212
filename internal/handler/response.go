// Package handler provides HTTP handlers for the Pictor API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prn-tf/pictor/internal/service"
)

// apiResponse is the standard JSON body for every response.
// Failures carry a human-readable message; validation failures add
// field-level errors. Internal error details are never echoed.
type apiResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token,omitempty"`
	Key     string            `json:"key,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// writeJSON writes an apiResponse with the given status.
func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeMessage writes a message-only JSON response.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Message: message})
}

// writeServiceError maps a service error to its HTTP representation.
// notFoundMsg and unauthorizedMsg carry the endpoint-specific wording;
// infrastructure failures always collapse to a generic 500.
func writeServiceError(w http.ResponseWriter, err error, notFoundMsg, unauthorizedMsg string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Message: "Validation failed",
			Errors:  validationErr.Fields,
		})
	case errors.Is(err, service.ErrUserAlreadyExists):
		writeMessage(w, http.StatusConflict, "Username has already been taken")
	case errors.Is(err, service.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, unauthorizedMsg)
	case errors.Is(err, service.ErrTooManyAttempts):
		writeMessage(w, http.StatusTooManyRequests, "Too many login attempts, try again later!")
	case errors.Is(err, service.ErrImageEmpty),
		errors.Is(err, service.ErrUnsupportedImageType):
		writeMessage(w, http.StatusBadRequest, "Invalid image upload!")
	case errors.Is(err, service.ErrImageTooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, "Image is too large!")
	default:
		writeMessage(w, http.StatusInternalServerError, "Something went wrong!")
	}
}

// decodeJSON decodes a request body into dst, rejecting unknown noise
// gently: a malformed body is a validation-class failure.
func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
