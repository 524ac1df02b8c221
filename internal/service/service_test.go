package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deskline/service-desk/internal/config"
	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/events"
	"github.com/deskline/service-desk/internal/lifecycle"
	"github.com/deskline/service-desk/internal/policy"
	"github.com/deskline/service-desk/internal/repository/memory"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

type fixture struct {
	users      *memory.Users
	teams      *memory.Teams
	tickets    *memory.Tickets
	history    *memory.History
	comments   *memory.Comments
	dispatcher events.Dispatcher
	received   []events.Event
	svc        *TicketService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:      memory.NewUsers(),
		teams:      memory.NewTeams(),
		tickets:    memory.NewTickets(),
		history:    memory.NewHistory(),
		comments:   memory.NewComments(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	f.dispatcher.SubscribeAll(func(_ context.Context, e events.Event) error {
		f.received = append(f.received, e)
		return nil
	})
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo:  f.tickets,
		HistoryRepo: f.history,
		CommentRepo: f.comments,
		UserRepo:    f.users,
		TeamRepo:    f.teams,
		Sequence:    memory.NewSequence(),
		Dispatcher:  f.dispatcher,
		Logger:      zap.NewNop(),
	})
	return f
}

func (f *fixture) user(t *testing.T, role policy.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: string(role), Email: uuid.NewString() + "@example.com", Role: role, Active: true}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func code(err error) string {
	var derr *apperrors.DomainError
	if errors.As(err, &derr) {
		return derr.Code
	}
	return ""
}

func TestCreateTicketDefaults(t *testing.T) {
	f := newFixture(t)
	requester := f.user(t, policy.RoleUser)

	ticket, err := f.svc.CreateTicket(context.Background(), requester, TicketCreateInput{Title: "  VPN down ", Channel: "carrier-pigeon"})
	require.NoError(t, err)
	assert.Equal(t, "TK-0001", ticket.Number)
	assert.Equal(t, "VPN down", ticket.Title)
	assert.Equal(t, lifecycle.StatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.DefaultTicketType, ticket.Type)
	assert.Equal(t, domain.DefaultRating, ticket.Urgency)
	assert.Equal(t, domain.ChannelWeb, ticket.Channel)
	assert.True(t, ticket.IsRequestedBy(requester.ID))

	second, err := f.svc.CreateTicket(context.Background(), requester, TicketCreateInput{Title: "Second", Priority: domain.TicketPriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, "TK-0002", second.Number)

	require.Len(t, f.received, 2)
	assert.Equal(t, events.EventTicketCreated, f.received[0].Type)
	assert.Equal(t, requester.ID, f.received[0].RequesterID)

	_, err = f.svc.CreateTicket(context.Background(), requester, TicketCreateInput{Title: " "})
	assert.Equal(t, "VALIDATION_FAILED", code(err))
}

func TestCreateTicketOnBehalfRequiresAssign(t *testing.T) {
	f := newFixture(t)
	agent := f.user(t, policy.RoleAgent)
	requester := f.user(t, policy.RoleUser)
	other := f.user(t, policy.RoleViewer)

	ticket, err := f.svc.CreateTicket(context.Background(), agent, TicketCreateInput{Title: "Phone", RequesterID: &requester.ID})
	require.NoError(t, err)
	assert.True(t, ticket.IsRequestedBy(requester.ID))

	// the user role cannot file for someone else; the field is ignored
	ticket, err = f.svc.CreateTicket(context.Background(), requester, TicketCreateInput{Title: "Mine", RequesterID: &other.ID})
	require.NoError(t, err)
	assert.True(t, ticket.IsRequestedBy(requester.ID))

	_, err = f.svc.CreateTicket(context.Background(), other, TicketCreateInput{Title: "Viewer"})
	assert.Equal(t, "FORBIDDEN", code(err))
}

func TestUserRoleSeesOnlyOwnTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, policy.RoleUser)
	bob := &domain.User{Name: "bob", Email: "bob@example.com", Role: policy.RoleUser, Active: true}
	require.NoError(t, f.users.Create(ctx, bob))
	agent := f.user(t, policy.RoleAgent)

	mine, err := f.svc.CreateTicket(ctx, alice, TicketCreateInput{Title: "A"})
	require.NoError(t, err)
	theirs, err := f.svc.CreateTicket(ctx, bob, TicketCreateInput{Title: "B"})
	require.NoError(t, err)

	list, err := f.svc.ListTickets(ctx, alice, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	all, err := f.svc.ListTickets(ctx, agent, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, _, err = f.svc.GetTicket(ctx, alice, theirs.ID)
	assert.Equal(t, "NOT_FOUND", code(err))

	got, history, err := f.svc.GetTicket(ctx, alice, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ChangeTypeCreated, history[0].ChangeType)
}

func TestChangeStatusFollowsLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := f.user(t, policy.RoleAgent)
	ticket, err := f.svc.CreateTicket(ctx, agent, TicketCreateInput{Title: "Disk full"})
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, agent, ticket.ID, lifecycle.StatusResolved, "")
	require.Error(t, err)
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "INVALID_TRANSITION", derr.Code)
	assert.Equal(t, 409, derr.HTTPStatus)
	assert.Equal(t, []string{"In Progress", "On Hold", "Canceled"}, derr.Details["allowed"])

	for _, next := range []lifecycle.Status{lifecycle.StatusInProgress, lifecycle.StatusResolved, lifecycle.StatusClosed} {
		ticket, err = f.svc.ChangeStatus(ctx, agent, ticket.ID, next, "step")
		require.NoError(t, err)
		assert.Equal(t, next, ticket.Status)
	}
	require.NotNil(t, ticket.ClosedAt)

	_, err = f.svc.ChangeStatus(ctx, agent, ticket.ID, lifecycle.StatusInProgress, "")
	assert.Equal(t, "INVALID_TRANSITION", code(err))

	_, err = f.svc.ChangeStatus(ctx, agent, ticket.ID, lifecycle.Status("Reopened"), "")
	assert.Equal(t, "VALIDATION_FAILED", code(err))

	_, history, err := f.svc.GetTicket(ctx, agent, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestReopenClearsClosedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.user(t, policy.RoleManager)
	ticket, err := f.svc.CreateTicket(ctx, manager, TicketCreateInput{Title: "Laptop"})
	require.NoError(t, err)
	_, err = f.tickets.Transition(ctx, ticket.ID, lifecycle.StatusOpen, lifecycle.StatusResolved, nil)
	require.NoError(t, err)

	ticket, err = f.svc.ChangeStatus(ctx, manager, ticket.ID, lifecycle.StatusInProgress, "")
	require.NoError(t, err)
	assert.Nil(t, ticket.ClosedAt)
}

func TestTransitionsDependOnPermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := f.user(t, policy.RoleAgent)
	viewer := f.user(t, policy.RoleViewer)
	ticket, err := f.svc.CreateTicket(ctx, agent, TicketCreateInput{Title: "Printer"})
	require.NoError(t, err)

	_, next, err := f.svc.AvailableTransitions(ctx, agent, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.NextStatuses(lifecycle.StatusOpen), next)

	_, next, err = f.svc.AvailableTransitions(ctx, viewer, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, next)

	_, err = f.svc.ChangeStatus(ctx, viewer, ticket.ID, lifecycle.StatusInProgress, "")
	assert.Equal(t, "FORBIDDEN", code(err))
}

func TestAssignTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.user(t, policy.RoleManager)
	agent := f.user(t, policy.RoleAgent)
	requester := f.user(t, policy.RoleUser)
	ticket, err := f.svc.CreateTicket(ctx, requester, TicketCreateInput{Title: "Access"})
	require.NoError(t, err)

	assigned, err := f.svc.AssignTicket(ctx, manager, ticket.ID, &agent.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssigneeID)
	assert.Equal(t, agent.ID, *assigned.AssigneeID)

	_, err = f.svc.AssignTicket(ctx, manager, ticket.ID, &requester.ID)
	assert.Equal(t, "CONFLICT", code(err))

	missing := "nope"
	_, err = f.svc.AssignTicket(ctx, manager, ticket.ID, &missing)
	assert.Equal(t, "NOT_FOUND", code(err))

	_, err = f.svc.AssignTicket(ctx, requester, ticket.ID, nil)
	assert.Equal(t, "FORBIDDEN", code(err))

	cleared, err := f.svc.AssignTicket(ctx, manager, ticket.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.AssigneeID)
}

func TestUpdateAndDeleteTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, policy.RoleAdmin)
	manager := f.user(t, policy.RoleManager)
	ticket, err := f.svc.CreateTicket(ctx, manager, TicketCreateInput{Title: "Old"})
	require.NoError(t, err)

	title := "New"
	critical := domain.TicketPriorityCritical
	updated, err := f.svc.UpdateTicket(ctx, manager, ticket.ID, TicketUpdateInput{Title: &title, Priority: &critical})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, domain.TicketPriorityCritical, updated.Priority)

	var types []events.EventType
	for _, e := range f.received {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, events.EventTicketPriorityChanged)
	assert.Contains(t, types, events.EventTicketUpdated)

	bogus := domain.TicketPriority("Urgent!")
	_, err = f.svc.UpdateTicket(ctx, manager, ticket.ID, TicketUpdateInput{Priority: &bogus})
	assert.Equal(t, "VALIDATION_FAILED", code(err))

	assert.Equal(t, "FORBIDDEN", code(f.svc.DeleteTicket(ctx, manager, ticket.ID)))
	require.NoError(t, f.svc.DeleteTicket(ctx, admin, ticket.ID))
	assert.Equal(t, "NOT_FOUND", code(f.svc.DeleteTicket(ctx, admin, ticket.ID)))
}

func TestAuthRegisterLoginAndBootstrap(t *testing.T) {
	users := memory.NewUsers()
	svc := NewAuthService(config.AuthConfig{JWTSecret: "k", AccessTokenTTLMinutes: 5, BcryptCost: 4}, users, zap.NewNop())
	ctx := context.Background()

	session, err := svc.Register(ctx, "Ann", "Ann@Example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, policy.RoleUser, session.User.Role)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Register(ctx, "Ann", "ann@example.com", "password1")
	assert.Equal(t, "CONFLICT", code(err))

	_, err = svc.Login(ctx, "ann@example.com", "wrong")
	assert.Equal(t, "UNAUTHORIZED", code(err))
	_, err = svc.Login(ctx, "ghost@example.com", "password1")
	assert.Equal(t, "UNAUTHORIZED", code(err))

	login, err := svc.Login(ctx, " ANN@example.com", "password1")
	require.NoError(t, err)
	claims, err := svc.TokenManager().ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	require.NoError(t, svc.BootstrapAdmin(ctx, "root@example.com", "admin-pass"))
	require.NoError(t, svc.BootstrapAdmin(ctx, "root@example.com", "admin-pass"))
	admin, err := users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, policy.RoleAdmin, admin.Role)
	require.NoError(t, svc.BootstrapAdmin(ctx, "", ""))
}

func TestUserServiceRoleChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.users, f.teams, nil)
	admin := f.user(t, policy.RoleAdmin)
	manager := f.user(t, policy.RoleManager)
	target := f.user(t, policy.RoleUser)

	updated, err := svc.ChangeRole(ctx, admin, target.ID, "Agent")
	require.NoError(t, err)
	assert.Equal(t, policy.RoleAgent, updated.Role)

	_, err = svc.ChangeRole(ctx, admin, target.ID, "superuser")
	assert.Equal(t, "VALIDATION_FAILED", code(err))

	_, err = svc.ChangeRole(ctx, manager, target.ID, "admin")
	assert.Equal(t, "FORBIDDEN", code(err))

	_, err = svc.ChangeRole(ctx, admin, admin.ID, "viewer")
	assert.Equal(t, "CONFLICT", code(err))

	inactive := false
	_, err = svc.UpdateUser(ctx, manager, target.ID, UserUpdateInput{Active: &inactive})
	require.NoError(t, err)
	list, err := svc.ListUsers(ctx, manager, repositoryFilterActive(true))
	require.NoError(t, err)
	for _, u := range list {
		assert.NotEqual(t, target.ID, u.ID)
	}

	_, err = svc.UpdateUser(ctx, manager, manager.ID, UserUpdateInput{Active: &inactive})
	assert.Equal(t, "CONFLICT", code(err))
}

func TestTeamServiceCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTeamService(f.teams, f.users)
	admin := f.user(t, policy.RoleAdmin)
	manager := f.user(t, policy.RoleManager)

	team, err := svc.CreateTeam(ctx, admin, TeamInput{Name: "Network", LeadID: &manager.ID})
	require.NoError(t, err)
	assert.True(t, team.IsActive)

	_, err = svc.CreateTeam(ctx, manager, TeamInput{Name: "Nope"})
	assert.Equal(t, "FORBIDDEN", code(err))

	off := false
	updated, err := svc.UpdateTeam(ctx, manager, team.ID, TeamInput{Name: "Networking", IsActive: &off})
	require.NoError(t, err)
	assert.Equal(t, "Networking", updated.Name)
	assert.Nil(t, updated.LeadID)

	active, err := svc.ListTeams(ctx, manager, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	// inactive teams cannot receive new tickets
	_, err = f.svc.CreateTicket(ctx, admin, TicketCreateInput{Title: "x", TeamID: &team.ID})
	assert.Equal(t, "CONFLICT", code(err))

	require.NoError(t, svc.DeleteTeam(ctx, admin, team.ID))
	_, err = svc.GetTeam(ctx, admin, team.ID)
	assert.Equal(t, "NOT_FOUND", code(err))
}

func TestWorkflowServiceMapsNoTrigger(t *testing.T) {
	svc := NewWorkflowService(zap.NewNop())
	user := &domain.User{ID: "u", Role: policy.RoleViewer, Active: true}
	_, err := svc.Test(context.Background(), user, workflowDefinitionWithoutTrigger())
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "No trigger nodes found", derr.Message)
	assert.Equal(t, 400, derr.HTTPStatus)

	_, err = svc.Test(context.Background(), nil, workflowDefinitionWithoutTrigger())
	assert.Equal(t, "UNAUTHORIZED", code(err))
}

type failingStream struct{ err error }

func (f failingStream) Publish(context.Context, events.Event) error { return f.err }

func TestNotificationErrorsSurfaceFromPublish(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	streamErr := errors.New("backlog")
	n := NewNotificationService(dispatcher, failingStream{err: streamErr}, zap.NewNop(), config.NotificationConfig{WebhookURL: "http://hook"})
	n.RegisterHandlers()
	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketAssigned})
	assert.ErrorIs(t, err, streamErr)
}
