package events

import (
	"time"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/lifecycle"
	"github.com/deskline/service-desk/internal/policy"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketUpdated         EventType = "ticket_updated"
	EventTicketDeleted         EventType = "ticket_deleted"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommented       EventType = "ticket_commented"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   policy.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID       string    `json:"id"`
	Type     EventType `json:"type"`
	TicketID string    `json:"ticket_id"`
	// RequesterID scopes delivery to requester-only subscribers.
	RequesterID string `json:"requester_id,omitempty"`
	// Internal marks staff-only events such as internal notes.
	Internal  bool      `json:"internal,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Number   string                `json:"number"`
	TeamID   *string               `json:"team_id,omitempty"`
	Priority domain.TicketPriority `json:"priority"`
	Title    string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus lifecycle.Status `json:"old_status"`
	NewStatus lifecycle.Status `json:"new_status"`
	Comment   string           `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
	TeamID     *string `json:"team_id,omitempty"`
}

// TicketUpdatedPayload lists the fields an update touched.
type TicketUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// TicketCommentedPayload previews a new comment.
type TicketCommentedPayload struct {
	CommentID string `json:"comment_id"`
	Internal  bool   `json:"internal"`
	Preview   string `json:"preview"`
}
