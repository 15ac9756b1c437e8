package repository

import (
	"context"
	"errors"

	"sso-backend/internal/domain"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when the email is already taken.
	ErrAlreadyExists = errors.New("user already exists")
)

// UserRepository defines persistence operations for User entities.
// Each create is a single atomic insert; a failed call leaves no row behind.
type UserRepository interface {
	Init(ctx context.Context) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateLocal(ctx context.Context, email, passwordHash, fullName string) (*domain.User, error)
	CreateExternal(ctx context.Context, email, fullName string, provider domain.Provider) (*domain.User, error)
	List(ctx context.Context, skip, limit int) ([]domain.User, error)
}
