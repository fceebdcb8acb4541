package repository

import (
	"context"

	"freelance/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create adds a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword replaces the stored password hash for a user.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
