package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/events"
	"github.com/deskline/service-desk/internal/policy"
)

func TestCommentPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	requester := f.user(t, policy.RoleUser)
	stranger := f.user(t, policy.RoleUser)
	viewer := f.user(t, policy.RoleViewer)
	agent := f.user(t, policy.RoleAgent)

	ticket, err := f.svc.CreateTicket(ctx, requester, TicketCreateInput{Title: "Laptop fan noise"})
	require.NoError(t, err)

	reply, err := f.svc.AddComment(ctx, requester, ticket.ID, CommentInput{Body: "  still loud  "})
	require.NoError(t, err)
	assert.Equal(t, "still loud", reply.Body)
	require.NotNil(t, reply.AuthorID)
	assert.Equal(t, requester.ID, *reply.AuthorID)

	_, err = f.svc.AddComment(ctx, requester, ticket.ID, CommentInput{Body: "note to self", Internal: true})
	assert.Equal(t, "FORBIDDEN", code(err))

	_, err = f.svc.AddComment(ctx, stranger, ticket.ID, CommentInput{Body: "me too"})
	assert.Equal(t, "NOT_FOUND", code(err))

	_, err = f.svc.AddComment(ctx, viewer, ticket.ID, CommentInput{Body: "hello"})
	assert.Equal(t, "FORBIDDEN", code(err))

	_, err = f.svc.AddComment(ctx, agent, ticket.ID, CommentInput{Body: "   "})
	assert.Equal(t, "VALIDATION_FAILED", code(err))

	_, err = f.svc.AddComment(ctx, agent, ticket.ID, CommentInput{Body: "ordering a replacement"})
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, agent, ticket.ID, CommentInput{Body: "warranty expired", Internal: true})
	require.NoError(t, err)

	staff, err := f.svc.ListComments(ctx, agent, ticket.ID)
	require.NoError(t, err)
	require.Len(t, staff, 3)
	assert.True(t, staff[2].Internal)

	for _, reader := range []*domain.User{requester, viewer} {
		public, err := f.svc.ListComments(ctx, reader, ticket.ID)
		require.NoError(t, err)
		require.Len(t, public, 2, "role=%s", reader.Role)
		for _, c := range public {
			assert.False(t, c.Internal)
		}
	}
}

func TestInternalNotesStayOutOfRequesterHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	requester := f.user(t, policy.RoleUser)
	agent := f.user(t, policy.RoleAgent)

	ticket, err := f.svc.CreateTicket(ctx, requester, TicketCreateInput{Title: "Shared drive"})
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, agent, ticket.ID, CommentInput{Body: "checking ACLs"})
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, agent, ticket.ID, CommentInput{Body: "user is in the wrong OU", Internal: true})
	require.NoError(t, err)

	_, staffHistory, err := f.svc.GetTicket(ctx, agent, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, staffHistory, 3)

	_, history, err := f.svc.GetTicket(ctx, requester, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ChangeTypeComment, history[1].ChangeType)
	assert.Equal(t, false, history[1].NewValue["internal"])
}

func TestCommentEventsCarryVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	requester := f.user(t, policy.RoleUser)
	agent := f.user(t, policy.RoleAgent)

	ticket, err := f.svc.CreateTicket(ctx, requester, TicketCreateInput{Title: "Monitor flicker"})
	require.NoError(t, err)
	long := strings.Repeat("x", commentPreviewRunes+10)
	_, err = f.svc.AddComment(ctx, agent, ticket.ID, CommentInput{Body: long, Internal: true})
	require.NoError(t, err)

	last := f.received[len(f.received)-1]
	assert.Equal(t, events.EventTicketCommented, last.Type)
	assert.True(t, last.Internal)
	assert.Equal(t, requester.ID, last.RequesterID)
	payload := last.Payload.(events.TicketCommentedPayload)
	assert.True(t, payload.Internal)
	assert.Equal(t, commentPreviewRunes+1, len([]rune(payload.Preview)))
}
