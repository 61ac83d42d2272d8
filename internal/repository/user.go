package repository

import (
	"context"
	"errors"

	"authgate/internal/domain"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken is returned when a create collides with the unique email
// constraint. Two concurrent registrations for the same email both pass the
// application-level existence check; the constraint is the real arbiter.
var ErrEmailTaken = errors.New("email already registered")

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
