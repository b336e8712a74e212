// Package handler provides HTTP handlers for the Pictor API.
package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/pictor/internal/auth"
	"github.com/prn-tf/pictor/internal/metrics"
	"github.com/prn-tf/pictor/internal/service"
)

// UserHandler handles account registration, login, and mutation routes.
type UserHandler struct {
	authService    *service.AuthService
	accountService *service.AccountService
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *service.AuthService, accountService *service.AccountService, m *metrics.Metrics, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		authService:    authService,
		accountService: accountService,
		metrics:        m,
		logger:         logger.With().Str("handler", "user").Logger(),
	}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUp handles POST /users/sign-up.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Validation failed")
		return
	}

	_, err := h.authService.SignUp(r.Context(), service.SignUpInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err, "User not found!", "Invalid credentials!")
		return
	}

	writeMessage(w, http.StatusCreated, "User created successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials!")
		return
	}

	out, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) && h.metrics != nil {
			h.metrics.IncLoginFailure()
		}
		writeServiceError(w, err, "User not found!", "Invalid credentials!")
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Message: "Authentication succeeded!",
		Token:   out.Token,
	})
}

type changeNameRequest struct {
	UserID          int64  `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
	NewName         string `json:"newName"`
}

// ChangeName handles POST /users/change-name.
func (h *UserHandler) ChangeName(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token provided!")
		return
	}

	var req changeNameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Validation failed")
		return
	}

	// The acting identity comes from the verified token. A body-supplied
	// userId is only accepted as a cross-check, never as the identity.
	if req.UserID != 0 && req.UserID != claims.UserID {
		writeMessage(w, http.StatusForbidden, "You can only modify your own account!")
		return
	}

	err := h.accountService.ChangeName(r.Context(), claims.UserID, req.CurrentPassword, req.NewName)
	if err != nil {
		writeServiceError(w, err, "User not found!", "Incorrect current password!")
		return
	}

	writeMessage(w, http.StatusOK, "Name updated successfully!")
}

type changePasswordRequest struct {
	UserID          int64  `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /users/change-password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token provided!")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Validation failed")
		return
	}

	if req.UserID != 0 && req.UserID != claims.UserID {
		writeMessage(w, http.StatusForbidden, "You can only modify your own account!")
		return
	}

	err := h.accountService.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, err, "User not found!", "Incorrect current password!")
		return
	}

	writeMessage(w, http.StatusOK, "Password updated successfully!")
}
