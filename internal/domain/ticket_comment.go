package domain

import "time"

// TicketComment is one entry in a ticket's conversation thread.
type TicketComment struct {
	ID       string
	TicketID string
	AuthorID *string
	Body     string
	// Internal notes are visible to staff only.
	Internal  bool
	CreatedAt time.Time
}
