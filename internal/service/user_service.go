package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/policy"
	"github.com/deskline/service-desk/internal/repository"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// SessionCloser drops live connections held by an account.
type SessionCloser interface {
	DisconnectUser(userID string) int
}

// UserService manages accounts and their roles.
type UserService struct {
	users    repository.UserRepository
	teams    repository.TeamRepository
	sessions SessionCloser
}

// UserUpdateInput carries optional profile changes.
type UserUpdateInput struct {
	Name   *string
	Active *bool
	TeamID *string
}

// NewUserService creates the service. sessions may be nil.
func NewUserService(users repository.UserRepository, teams repository.TeamRepository, sessions SessionCloser) *UserService {
	return &UserService{users: users, teams: teams, sessions: sessions}
}

// ListUsers returns accounts matching filter.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := requirePermission(actor, policy.ResourceUsers, policy.ActionRead); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// GetUser fetches one account.
func (s *UserService) GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if err := requirePermission(actor, policy.ResourceUsers, policy.ActionRead); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user", "user_id", id)
	}
	return user, nil
}

// UpdateUser edits profile fields.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, id string, input UserUpdateInput) (*domain.User, error) {
	if err := requirePermission(actor, policy.ResourceUsers, policy.ActionUpdate); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user", "user_id", id)
	}
	// only role managers may touch accounts above their own rank
	if policy.Outranks(user.Role, actor.Role) && !actor.Can(policy.ResourceRoles, policy.ActionUpdate) {
		return nil, apperrors.NewDomainError("FORBIDDEN", "cannot modify an account that outranks you", http.StatusForbidden, map[string]any{
			"user_id": user.ID,
			"role":    user.Role,
		})
	}
	wasActive := user.Active
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"field": "name"})
		}
		user.Name = name
	}
	if input.Active != nil {
		if !*input.Active && user.ID == actor.ID {
			return nil, apperrors.NewConflict("cannot deactivate own account", nil)
		}
		if !*input.Active && wasActive && user.Role == policy.RoleAdmin {
			if err := s.requireOtherActiveAdmin(ctx, user.ID); err != nil {
				return nil, err
			}
		}
		user.Active = *input.Active
	}
	if input.TeamID != nil {
		if *input.TeamID == "" {
			user.TeamID = nil
		} else {
			if _, err := s.teams.GetByID(ctx, *input.TeamID); err != nil {
				return nil, lookupError(err, "team", "team_id", *input.TeamID)
			}
			user.TeamID = input.TeamID
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	if wasActive && !user.Active {
		s.disconnect(user.ID)
	}
	return user, nil
}

// ChangeRole assigns a new role. Unknown role names are rejected.
func (s *UserService) ChangeRole(ctx context.Context, actor *domain.User, id, roleName string) (*domain.User, error) {
	if err := requirePermission(actor, policy.ResourceRoles, policy.ActionUpdate); err != nil {
		return nil, err
	}
	role, ok := policy.ParseRole(roleName)
	if !ok {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": roleName})
	}
	if id == actor.ID {
		return nil, apperrors.NewConflict("cannot change own role", nil)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user", "user_id", id)
	}
	previous := user.Role
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	if previous != role {
		s.disconnect(user.ID)
	}
	return user, nil
}

func (s *UserService) requireOtherActiveAdmin(ctx context.Context, exceptID string) error {
	role, active := policy.RoleAdmin, true
	admins, err := s.users.List(ctx, repository.UserFilter{Role: &role, Active: &active, Limit: 2})
	if err != nil {
		return apperrors.MapError(err)
	}
	for _, admin := range admins {
		if admin.ID != exceptID {
			return nil
		}
	}
	return apperrors.NewConflict("cannot deactivate the last active admin", map[string]any{"user_id": exceptID})
}

// disconnect closes live streams so they reconnect under the account's current state.
func (s *UserService) disconnect(userID string) {
	if s.sessions != nil {
		s.sessions.DisconnectUser(userID)
	}
}
