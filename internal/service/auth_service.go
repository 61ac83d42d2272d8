package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/sirupsen/logrus"

	"authgate/internal/domain"
	"authgate/internal/password"
	"authgate/internal/repository"
	"authgate/internal/token"
)

// RegisterInput is the raw registration form payload.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// LoginInput is the raw login form payload.
type LoginInput struct {
	Email    string
	Password string
}

// Session pairs the public identity with a freshly signed session token.
// The token exists only when the whole operation succeeded.
type Session struct {
	User  domain.PublicUser
	Token string
}

// AuthService orchestrates registration and login against the user store.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	EmailAvailable(ctx context.Context, email string) bool
}

type authService struct {
	users  repository.UserRepository
	tokens *token.Codec
	logger *logrus.Logger
}

func NewAuthService(users repository.UserRepository, tokens *token.Codec, logger *logrus.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if err := validateRegister(input); err != nil {
		return nil, err
	}

	// best-effort pre-check; the unique constraint catches the race
	_, err := s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, ErrEmailExists
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueSession(user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	if err := validateLogin(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if !password.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(user)
}

// EmailAvailable reports whether no account uses the email yet. It feeds
// inline form feedback and fails open: a store error reads as available.
func (s *authService) EmailAvailable(ctx context.Context, email string) bool {
	if email == "" {
		return true
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return false
	case errors.Is(err, repository.ErrNotFound):
		return true
	default:
		s.logger.WithError(err).Warn("email availability check failed")
		return true
	}
}

func (s *authService) issueSession(user *domain.User) (*Session, error) {
	tok, err := s.tokens.Issue(token.Claim{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &Session{User: user.Public(), Token: tok}, nil
}

func validateRegister(input RegisterInput) error {
	v := &ValidationError{}
	if input.Name == "" {
		v.add("name", "Name is required")
	}
	validateEmail(v, input.Email)
	if len(input.Password) < 8 {
		v.add("password", "Password must be at least 8 characters long")
	}
	if input.ConfirmPassword == "" {
		v.add("confirm_password", "Please confirm your password")
	} else if input.ConfirmPassword != input.Password {
		v.add("confirm_password", "Passwords do not match")
	}
	return v.orNil()
}

func validateLogin(input LoginInput) error {
	v := &ValidationError{}
	validateEmail(v, input.Email)
	if input.Password == "" {
		v.add("password", "Password is required")
	}
	return v.orNil()
}

func validateEmail(v *ValidationError, email string) {
	if email == "" {
		v.add("email", "Email is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		v.add("email", "Invalid email format")
	}
}
