package domain

import "time"

// Team groups agents who work a queue.
type Team struct {
	ID          string
	Name        string
	Description string
	LeadID      *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
