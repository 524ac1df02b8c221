package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/lifecycle"
	"github.com/deskline/service-desk/internal/policy"
	"github.com/deskline/service-desk/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestUsersCRUD(t *testing.T) {
	ctx := context.Background()
	users := NewUsers()

	u := &domain.User{Name: "Ada", Email: "Ada@Example.com", Role: policy.RoleAgent, Active: true}
	require.NoError(t, users.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := users.GetByEmail(ctx, "ada@example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got.Role = policy.RoleManager
	require.NoError(t, users.Update(ctx, got))

	again, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.RoleManager, again.Role)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	dup := &domain.User{Name: "Ada 2", Email: "ADA@example.com", Role: policy.RoleUser, Active: true}
	var pgErr *pgconn.PgError
	require.ErrorAs(t, users.Create(ctx, dup), &pgErr)
	assert.Equal(t, "23505", pgErr.Code)

	role := policy.RoleManager
	list, err := users.List(ctx, repository.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = users.List(ctx, repository.UserFilter{Search: strPtr("nobody")})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTicketsFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	tickets := NewTickets()

	for i, status := range []lifecycle.Status{lifecycle.StatusOpen, lifecycle.StatusOpen, lifecycle.StatusClosed} {
		requester := "u1"
		if i == 2 {
			requester = "u2"
		}
		tk := &domain.Ticket{Number: fmt.Sprintf("TK-%04d", i+1), Title: "Printer jam", Status: status, Priority: domain.TicketPriorityHigh, RequesterID: strPtr(requester), Tags: []string{"hw"}}
		require.NoError(t, tickets.Create(ctx, tk))
		time.Sleep(time.Millisecond)
	}

	mine, err := tickets.ListWithFilter(ctx, repository.TicketFilter{RequesterID: strPtr("u1")})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	closed, err := tickets.ListWithFilter(ctx, repository.TicketFilter{Statuses: []lifecycle.Status{lifecycle.StatusClosed}})
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, "u2", *closed[0].RequesterID)

	paged, err := tickets.ListWithFilter(ctx, repository.TicketFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 1)

	found, err := tickets.ListWithFilter(ctx, repository.TicketFilter{SearchTerm: strPtr("PRINTER")})
	require.NoError(t, err)
	assert.Len(t, found, 3)

	// stored tickets are isolated from caller mutation
	found[0].Tags[0] = "changed"
	fresh, err := tickets.GetByID(ctx, found[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hw"}, fresh.Tags)

	require.NoError(t, tickets.Delete(ctx, fresh.ID))
	assert.ErrorIs(t, tickets.Delete(ctx, fresh.ID), pgx.ErrNoRows)
}

func TestTeamsListHidesInactive(t *testing.T) {
	ctx := context.Background()
	teams := NewTeams()
	require.NoError(t, teams.Create(ctx, &domain.Team{Name: "Network", IsActive: true}))
	require.NoError(t, teams.Create(ctx, &domain.Team{Name: "Archive", IsActive: false}))

	active, err := teams.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := teams.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Archive", all[0].Name)
}

func TestSequenceIncrements(t *testing.T) {
	seq := NewSequence()
	a, _ := seq.Next(context.Background())
	b, _ := seq.Next(context.Background())
	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(2), b)
}

func TestHistoryByTicket(t *testing.T) {
	ctx := context.Background()
	h := NewHistory()
	require.NoError(t, h.Create(ctx, &domain.TicketHistory{TicketID: "t1", ChangeType: domain.ChangeTypeCreated}))
	require.NoError(t, h.Create(ctx, &domain.TicketHistory{TicketID: "t2", ChangeType: domain.ChangeTypeCreated}))
	require.NoError(t, h.Create(ctx, &domain.TicketHistory{TicketID: "t1", ChangeType: domain.ChangeTypeStatus}))

	entries, err := h.ListByTicket(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ChangeTypeStatus, entries[1].ChangeType)
}

func TestTicketWritesAreColumnScoped(t *testing.T) {
	ctx := context.Background()
	tickets := NewTickets()
	tk := &domain.Ticket{Number: "TK-0001", Title: "Old", Status: lifecycle.StatusResolved, Priority: domain.TicketPriorityLow}
	require.NoError(t, tickets.Create(ctx, tk))

	now := time.Now().UTC()
	closed, err := tickets.Transition(ctx, tk.ID, lifecycle.StatusResolved, lifecycle.StatusClosed, &now)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusClosed, closed.Status)

	_, err = tickets.Transition(ctx, tk.ID, lifecycle.StatusResolved, lifecycle.StatusInProgress, nil)
	assert.ErrorIs(t, err, repository.ErrStatusChanged)
	_, err = tickets.Transition(ctx, "missing", lifecycle.StatusOpen, lifecycle.StatusInProgress, nil)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	title := "New"
	high := domain.TicketPriorityHigh
	patched, err := tickets.Patch(ctx, tk.ID, repository.TicketPatch{Title: &title, Priority: &high, Tags: []string{"vip"}})
	require.NoError(t, err)
	assert.Equal(t, "New", patched.Title)
	assert.Equal(t, domain.TicketPriorityHigh, patched.Priority)
	assert.Equal(t, lifecycle.StatusClosed, patched.Status)
	assert.NotNil(t, patched.ClosedAt)

	assigned, err := tickets.SetAssignee(ctx, tk.ID, strPtr("agent-1"))
	require.NoError(t, err)
	assert.Equal(t, "agent-1", *assigned.AssigneeID)
	assert.Equal(t, lifecycle.StatusClosed, assigned.Status)
	assert.Equal(t, "New", assigned.Title)

	due := now.Add(time.Hour)
	withDue, err := tickets.Patch(ctx, tk.ID, repository.TicketPatch{DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, withDue.DueDate)
	cleared, err := tickets.Patch(ctx, tk.ID, repository.TicketPatch{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, tickets.Create(ctx, &domain.Ticket{Number: "TK-0001", Title: "dup"}), &pgErr)
	assert.Equal(t, "tickets_number_key", pgErr.ConstraintName)
}
