// Package service provides business logic services for Pictor.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rs/zerolog"

	"github.com/prn-tf/pictor/internal/auth"
	"github.com/prn-tf/pictor/internal/domain"
	"github.com/prn-tf/pictor/internal/pkg/password"
	"github.com/prn-tf/pictor/internal/ratelimit"
	"github.com/prn-tf/pictor/internal/repository"
)

// AuthService orchestrates sign-up and login.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   *password.Hasher
	issuer   *auth.Issuer
	limiter  ratelimit.Limiter
	limit    LoginLimit
	logger   zerolog.Logger
}

// LoginLimit configures login attempt rate limiting.
// A zero MaxAttempts disables limiting regardless of the limiter.
type LoginLimit struct {
	MaxAttempts int
	Window      time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, hasher *password.Hasher, issuer *auth.Issuer, limiter ratelimit.Limiter, limit LoginLimit, logger zerolog.Logger) *AuthService {
	if limiter == nil {
		limiter = ratelimit.NewNoopLimiter()
	}
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		limiter:  limiter,
		limit:    limit,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// SignUpInput contains the data needed to register a new account.
type SignUpInput struct {
	Name     string
	Username string
	Password string
}

// Validate checks the sign-up fields against the account schema:
// name and username required, at most 100 characters; password required,
// 8-100 characters.
func (in SignUpInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 100)),
	)
}

// SignUp registers a new account.
//
// The uniqueness pre-check gives a friendly Conflict for the common case;
// the store's unique constraint on username remains the backstop for
// concurrent sign-ups, and a constraint violation from Create maps to the
// same Conflict. Validation failure never persists a record.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*domain.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: username '%s'", ErrUserAlreadyExists, input.Username)
	}

	if err := input.Validate(); err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			fields := make(map[string]string, len(fieldErrs))
			for field, ferr := range fieldErrs {
				fields[field] = ferr.Error()
			}
			return nil, NewValidationError(fields)
		}
		return nil, NewValidationError(map[string]string{"input": err.Error()})
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Name, input.Username, passwordHash)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			// Lost a check-then-create race; the store's unique
			// constraint rejected the duplicate.
			return nil, fmt.Errorf("%w: username '%s'", ErrUserAlreadyExists, input.Username)
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user created")

	return user, nil
}

// LoginOutput contains the result of a successful login.
type LoginOutput struct {
	Token string
	User  *domain.User
}

// Login verifies credentials and issues a token.
//
// An unknown username and a wrong password both return
// ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, username, plaintext string) (*LoginOutput, error) {
	if s.limit.MaxAttempts > 0 {
		allowed, err := s.limiter.Allow(ctx, "login:"+username, s.limit.MaxAttempts, s.limit.Window)
		if err != nil {
			s.logger.Error().Err(err).Msg("rate limiter failure")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if !allowed {
			s.logger.Warn().Str("username", username).Msg("login rate limit exceeded")
			return nil, ErrTooManyAttempts
		}
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Log but don't expose whether the username exists.
			s.logger.Debug().Str("username", username).Msg("user not found during login")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to look up user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.hasher.Verify(plaintext, user.PasswordHash); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.logger.Debug().Str("username", username).Msg("invalid password during login")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("password verification failure")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	token, err := s.issuer.Issue(user.Name, user.Username, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if s.limit.MaxAttempts > 0 {
		_ = s.limiter.Reset(ctx, "login:"+username)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user authenticated")

	return &LoginOutput{Token: token, User: user}, nil
}
