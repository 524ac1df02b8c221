package dto

import (
	"time"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/lifecycle"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=10000"`
	Priority    string     `json:"priority" validate:"omitempty,ticket_priority"`
	Type        string     `json:"type" validate:"max=50"`
	Category    string     `json:"category" validate:"max=100"`
	Urgency     string     `json:"urgency" validate:"max=20"`
	Impact      string     `json:"impact" validate:"max=20"`
	Severity    string     `json:"severity" validate:"max=20"`
	Channel     string     `json:"channel" validate:"max=20"`
	TeamID      *string    `json:"team_id" validate:"omitempty,uuid"`
	RequesterID *string    `json:"requester_id" validate:"omitempty,uuid"`
	Tags        []string   `json:"tags" validate:"max=20,dive,max=40"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTicketRequest payload; omitted fields stay unchanged.
type UpdateTicketRequest struct {
	Title        *string    `json:"title" validate:"omitempty,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=10000"`
	Priority     *string    `json:"priority" validate:"omitempty,ticket_priority"`
	Type         *string    `json:"type" validate:"omitempty,max=50"`
	Category     *string    `json:"category" validate:"omitempty,max=100"`
	Urgency      *string    `json:"urgency" validate:"omitempty,max=20"`
	Impact       *string    `json:"impact" validate:"omitempty,max=20"`
	Severity     *string    `json:"severity" validate:"omitempty,max=20"`
	Tags         []string   `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status  string `json:"status" validate:"required,ticket_status"`
	Comment string `json:"comment" validate:"max=1000"`
}

// AssignTicketRequest payload; a null assignee unassigns.
type AssignTicketRequest struct {
	AssigneeID *string `json:"assignee_id" validate:"omitempty,uuid"`
}

// TicketResponse is the ticket representation.
type TicketResponse struct {
	ID           string                `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       lifecycle.Status      `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Type         string                `json:"type"`
	Category     string                `json:"category"`
	Urgency      string                `json:"urgency"`
	Impact       string                `json:"impact"`
	Severity     string                `json:"severity"`
	Channel      domain.TicketChannel  `json:"channel"`
	RequesterID  *string               `json:"requester_id"`
	AssigneeID   *string               `json:"assignee_id"`
	TeamID       *string               `json:"team_id"`
	Tags         []string              `json:"tags"`
	DueDate      *time.Time            `json:"due_date"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	ClosedAt     *time.Time            `json:"closed_at"`
}

// TicketDetailResponse adds the audit trail.
type TicketDetailResponse struct {
	TicketResponse
	History []TicketHistoryResponse `json:"history"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID          string                  `json:"id"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	ChangedByID *string                 `json:"changed_by_id"`
	OldValue    map[string]any          `json:"old_value,omitempty"`
	NewValue    map[string]any          `json:"new_value,omitempty"`
	Comment     string                  `json:"comment,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// TransitionsResponse lists where a ticket may move next.
type TransitionsResponse struct {
	TicketID string             `json:"ticket_id"`
	Current  lifecycle.Status   `json:"current"`
	Next     []lifecycle.Status `json:"next"`
}

// CommentRequest payload for a new thread entry.
type CommentRequest struct {
	Body     string `json:"body" validate:"required,max=10000"`
	Internal bool   `json:"internal"`
}

// CommentResponse is the comment representation.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  *string   `json:"author_id"`
	Body      string    `json:"body"`
	Internal  bool      `json:"internal"`
	CreatedAt time.Time `json:"created_at"`
}
