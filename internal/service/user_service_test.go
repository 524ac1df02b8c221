package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/policy"
)

type recordingSessions struct {
	closed []string
}

func (r *recordingSessions) DisconnectUser(userID string) int {
	r.closed = append(r.closed, userID)
	return 1
}

func TestManagerCannotDeactivateAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.users, f.teams, nil)
	manager := f.user(t, policy.RoleManager)
	admin := f.user(t, policy.RoleAdmin)

	inactive := false
	_, err := svc.UpdateUser(ctx, manager, admin.ID, UserUpdateInput{Active: &inactive})
	assert.Equal(t, "FORBIDDEN", code(err))

	name := "Renamed"
	_, err = svc.UpdateUser(ctx, manager, admin.ID, UserUpdateInput{Name: &name})
	assert.Equal(t, "FORBIDDEN", code(err))

	stored, err := f.users.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
	assert.Equal(t, "admin", stored.Name)

	// peers and lower ranks stay editable
	agent := f.user(t, policy.RoleAgent)
	_, err = svc.UpdateUser(ctx, manager, agent.ID, UserUpdateInput{Active: &inactive})
	require.NoError(t, err)
}

func TestLastActiveAdminCannotBeDeactivated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.users, f.teams, nil)
	only := f.user(t, policy.RoleAdmin)
	// an admin whose own record is not in the active set
	operator := &domain.User{ID: "ops", Role: policy.RoleAdmin, Active: true}

	inactive := false
	_, err := svc.UpdateUser(ctx, operator, only.ID, UserUpdateInput{Active: &inactive})
	assert.Equal(t, "CONFLICT", code(err))

	second := f.user(t, policy.RoleAdmin)
	_, err = svc.UpdateUser(ctx, second, only.ID, UserUpdateInput{Active: &inactive})
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, operator, second.ID, UserUpdateInput{Active: &inactive})
	assert.Equal(t, "CONFLICT", code(err))
}

func TestAccountChangesCloseLiveSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sessions := &recordingSessions{}
	svc := NewUserService(f.users, f.teams, sessions)
	admin := f.user(t, policy.RoleAdmin)
	agent := f.user(t, policy.RoleAgent)
	requester := f.user(t, policy.RoleUser)

	name := "Agent Smith"
	_, err := svc.UpdateUser(ctx, admin, agent.ID, UserUpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Empty(t, sessions.closed)

	_, err = svc.ChangeRole(ctx, admin, agent.ID, "viewer")
	require.NoError(t, err)
	_, err = svc.ChangeRole(ctx, admin, agent.ID, "viewer")
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateUser(ctx, admin, requester.ID, UserUpdateInput{Active: &inactive})
	require.NoError(t, err)
	_, err = svc.UpdateUser(ctx, admin, requester.ID, UserUpdateInput{Active: &inactive})
	require.NoError(t, err)

	assert.Equal(t, []string{agent.ID, requester.ID}, sessions.closed)
}
