package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleServer  UserRole = "server"
	RoleKitchen UserRole = "kitchen"
)

// CanManageUsers reports whether the role may administer accounts.
// Admin access is a role capability, never a username comparison.
func (r UserRole) CanManageUsers() bool {
	return r == RoleAdmin
}

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"` // Never expose in JSON
	Name         string    `db:"name" json:"name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserRequest is used for user creation/update requests
type UserRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Password string   `json:"password" validate:"required,min=6"`
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Role     UserRole `json:"role" validate:"required,oneof=admin manager server kitchen"`
	IsActive bool     `json:"is_active"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest carries a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// UserUpdateRequest is used for updating user information
type UserUpdateRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Role     UserRole `json:"role" validate:"required,oneof=admin manager server kitchen"`
	IsActive bool     `json:"is_active"`
}
