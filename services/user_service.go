package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/tokengate/models"
	"github.com/upb/tokengate/repositories"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// UserService backs the user management endpoints
type UserService struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// GetUser returns the user with the given id
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, "failed to get user")
	}
	return user, nil
}

// ListUsers returns a page of users. limit is clamped to (0, 200]; zero means the default page size.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		return nil, NewDomainError(ErrorTypeValidation, "offset must not be negative", nil)
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, WrapInternal("failed to list users", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// UpdateRole changes the role of the user with the given id.
// The change is visible to the next authenticated request since identities are never cached.
func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, NewDomainError(ErrorTypeValidation, "unknown role", nil).WithDetail("role", string(role))
	}

	user, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, s.mapRepoError(err, "failed to update user role")
	}

	s.logger.Info("user role updated",
		zap.String("user_id", id.String()),
		zap.String("role", string(role)))
	return user, nil
}

func (s *UserService) mapRepoError(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound.Wrap(err)
	}
	return WrapInternal(message, err)
}
