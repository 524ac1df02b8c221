package domain

import (
	"time"

	"github.com/deskline/service-desk/internal/policy"
)

// User is an account that signs in to the service desk.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         policy.Role
	TeamID       *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Can reports whether the user's role permits action on resource.
// Inactive accounts are denied everything.
func (u *User) Can(resource policy.Resource, action policy.Action) bool {
	if u == nil || !u.Active {
		return false
	}
	return policy.Can(u.Role, resource, action)
}
