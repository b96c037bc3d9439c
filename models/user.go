package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is the coarse-grained access tag carried by a user
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleUser   UserRole = "user"
	RoleViewer UserRole = "viewer"
)

// Valid reports whether r is one of the known roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleViewer:
		return true
	}
	return false
}

// User is the authoritative identity record resolved for every authenticated request
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email" validate:"required,email"`
	Role      UserRole  `json:"role" db:"role" validate:"required,oneof=admin user viewer"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a new User instance
func NewUser(email string, role UserRole) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasRole reports whether the user's role is one of roles
func (u *User) HasRole(roles ...string) bool {
	for _, role := range roles {
		if string(u.Role) == role {
			return true
		}
	}
	return false
}
