// Package service provides the business logic for Bookworm.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/bookworm-api/internal/auth"
	"github.com/prn-tf/bookworm-api/internal/domain"
	"github.com/prn-tf/bookworm-api/internal/repository"
)

// minPasswordLen is the minimum accepted password length.
const minPasswordLen = 6

// minUsernameLen is the minimum accepted username length.
const minUsernameLen = 3

// AuthService handles registration and login.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenService
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// RegisterInput contains the data needed to register a user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput contains the data needed to log a user in.
type LoginInput struct {
	Email    string
	Password string
}

// AuthOutput is the result of a successful registration or login.
type AuthOutput struct {
	User  *domain.User
	Token string
}

// Register creates a new user account and issues a session token.
// Validation short-circuits on the first failure, in this order:
// fields present, password length, username length, email uniqueness,
// username uniqueness.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthOutput, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	if len(input.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if len(input.Username) < minUsernameLen {
		return nil, ErrUsernameTooShort
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	exists, err = s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Username, input.Email, string(passwordHash))

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The check-then-insert pair has a race window; the unique index
		// closes it and the conflict surfaces here.
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")

	return &AuthOutput{User: user, Token: token}, nil
}

// Login verifies credentials and issues a new session token. Unknown
// email and wrong password produce the same generic failure; earlier
// tokens remain valid, so concurrent sessions are implicitly allowed.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthOutput, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Don't expose whether the email exists.
			s.logger.Debug().Str("email", input.Email).Msg("login for unknown email")
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Debug().Int64("user_id", user.ID).Msg("invalid password during login")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user authenticated")

	return &AuthOutput{User: user, Token: token}, nil
}
