package dto

import "time"

// TeamRequest payload for create and update.
type TeamRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=500"`
	LeadID      *string `json:"lead_id" validate:"omitempty,uuid"`
	IsActive    *bool   `json:"is_active"`
}

// TeamResponse is the team representation.
type TeamResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LeadID      *string   `json:"lead_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
