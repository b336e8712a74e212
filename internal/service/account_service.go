// Package service provides business logic services for Pictor.
package service

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rs/zerolog"

	"github.com/prn-tf/pictor/internal/domain"
	"github.com/prn-tf/pictor/internal/pkg/password"
	"github.com/prn-tf/pictor/internal/repository"
)

// AccountService mutates existing accounts. Every mutation re-demands the
// current password as a step-up check, independent of the token already
// verified by the request gate.
type AccountService struct {
	userRepo repository.UserRepository
	hasher   *password.Hasher
	logger   zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo repository.UserRepository, hasher *password.Hasher, logger zerolog.Logger) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger.With().Str("service", "account").Logger(),
	}
}

// reauth loads a user and verifies the supplied current password.
// A missing user is ErrUserNotFound; a wrong password is
// ErrInvalidCredentials, deliberately distinct from not-found.
func (s *AccountService) reauth(ctx context.Context, userID int64, currentPassword string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.hasher.Verify(currentPassword, user.PasswordHash); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.logger.Debug().Int64("user_id", userID).Msg("step-up re-authentication failed")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("password verification failure")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return user, nil
}

// ChangeName updates the display name after re-authentication.
// A failed re-auth never mutates the record.
func (s *AccountService) ChangeName(ctx context.Context, userID int64, currentPassword, newName string) error {
	if err := validation.Validate(newName, validation.Required, validation.Length(1, 100)); err != nil {
		return NewValidationError(map[string]string{"newName": err.Error()})
	}

	user, err := s.reauth(ctx, userID, currentPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdateName(ctx, user.ID, newName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to update name")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("name updated")
	return nil
}

// ChangePassword replaces the stored hash after re-authentication.
// The new password is hashed with a fresh salt; a failed re-auth or
// validation never mutates the stored hash.
func (s *AccountService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if err := validation.Validate(newPassword, validation.Required, validation.Length(8, 100)); err != nil {
		return NewValidationError(map[string]string{"newPassword": err.Error()})
	}

	user, err := s.reauth(ctx, userID, currentPassword)
	if err != nil {
		return err
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash new password")
		return fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, newHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to update password")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password updated")
	return nil
}
