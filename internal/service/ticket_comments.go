package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/events"
	"github.com/deskline/service-desk/internal/policy"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

const commentPreviewRunes = 140

// CommentInput is a new thread entry.
type CommentInput struct {
	Body     string
	Internal bool
}

// AddComment appends to a ticket's thread. Requesters may reply publicly on
// their own tickets; everyone else, and every internal note, needs tickets:update.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID string, input CommentInput) (*domain.TicketComment, error) {
	if err := requirePermission(actor, policy.ResourceTickets, policy.ActionRead); err != nil {
		return nil, err
	}
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if input.Internal || !ticket.IsRequestedBy(actor.ID) {
		if err := requirePermission(actor, policy.ResourceTickets, policy.ActionUpdate); err != nil {
			return nil, err
		}
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, apperrors.NewValidationError("body is required", map[string]any{"field": "body"})
	}

	comment := &domain.TicketComment{
		TicketID: ticket.ID,
		AuthorID: &actor.ID,
		Body:     body,
		Internal: input.Internal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.record(ctx, actor, ticket.ID, domain.ChangeTypeComment, nil, map[string]any{
		"comment_id": comment.ID,
		"internal":   comment.Internal,
	}, ""); err != nil {
		return nil, err
	}

	event := s.event(actor, ticket, events.EventTicketCommented, events.TicketCommentedPayload{
		CommentID: comment.ID,
		Internal:  comment.Internal,
		Preview:   preview(body),
	})
	event.Internal = comment.Internal
	publish(ctx, s.dispatcher, s.logger, event)
	return comment, nil
}

// ListComments returns the thread oldest first. Internal notes are only
// included for callers with tickets:update.
func (s *TicketService) ListComments(ctx context.Context, actor *domain.User, ticketID string) ([]domain.TicketComment, error) {
	if err := requirePermission(actor, policy.ResourceTickets, policy.ActionRead); err != nil {
		return nil, err
	}
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, seesInternal(actor))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if comments == nil {
		comments = []domain.TicketComment{}
	}
	return comments, nil
}

func seesInternal(actor *domain.User) bool {
	return actor.Can(policy.ResourceTickets, policy.ActionUpdate)
}

// withoutInternalNotes drops history entries that announce internal notes.
func withoutInternalNotes(entries []domain.TicketHistory) []domain.TicketHistory {
	out := entries[:0:0]
	for _, h := range entries {
		if h.ChangeType == domain.ChangeTypeComment && h.NewValue["internal"] == true {
			continue
		}
		out = append(out, h)
	}
	return out
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= commentPreviewRunes {
		return body
	}
	return string([]rune(body)[:commentPreviewRunes]) + "…"
}
