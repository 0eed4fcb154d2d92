package repository

import (
	"context"
	"errors"

	"searchuser-api/internal/user/domain"
)

// ErrDuplicateEmail is returned by Create when the email uniqueness
// constraint is violated.
var ErrDuplicateEmail = errors.New("email already registered")

// Repository defines persistence for users and their telephones.
type Repository interface {
	// GetByID returns the user with telephones loaded, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail returns the user with telephones loaded, or nil if not found.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create persists the user and its telephones in one transaction.
	// Returns ErrDuplicateEmail when the email is already taken.
	Create(ctx context.Context, u *domain.User) error
	// Update rewrites the user's mutable columns (name, updated_at,
	// last_login_at). Telephones are not touched.
	Update(ctx context.Context, u *domain.User) error
}
