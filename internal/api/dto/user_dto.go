package dto

import (
	"time"

	"github.com/deskline/service-desk/internal/policy"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      policy.Role `json:"role"`
	TeamID    *string     `json:"team_id"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UpdateUserRequest payload; an empty team_id clears the team.
type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=120"`
	Active *bool   `json:"active"`
	TeamID *string `json:"team_id" validate:"omitempty,uuid"`
}

// ChangeRoleRequest payload.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// PermissionsResponse is the caller's effective permission map.
type PermissionsResponse struct {
	UserID      string                              `json:"user_id"`
	Role        policy.Role                         `json:"role"`
	Permissions map[policy.Resource][]policy.Action `json:"permissions"`
}
