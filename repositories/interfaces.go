package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/tokengate/models"
)

// ErrNotFound is wrapped by repository implementations when the requested record does not exist.
// Callers match it with errors.Is.
var ErrNotFound = errors.New("record not found")

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID; wraps ErrNotFound when absent
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// List retrieves users ordered by creation time, newest first
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// UpdateRole changes a user's role; wraps ErrNotFound when absent
	UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*models.User, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users UserRepository
}
