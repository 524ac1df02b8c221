package dto

import "time"

// OrganizationRequest payload; settings keys merge and null removes a key.
type OrganizationRequest struct {
	Name     *string        `json:"name" validate:"omitempty,max=200"`
	Domain   *string        `json:"domain" validate:"omitempty,fqdn"`
	Timezone *string        `json:"timezone" validate:"omitempty,max=64"`
	Settings map[string]any `json:"settings"`
}

// OrganizationResponse is the organization profile.
type OrganizationResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Domain    string         `json:"domain"`
	Timezone  string         `json:"timezone"`
	Settings  map[string]any `json:"settings"`
	UpdatedAt time.Time      `json:"updated_at"`
}
