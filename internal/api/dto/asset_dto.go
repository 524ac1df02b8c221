package dto

import (
	"time"

	"github.com/deskline/service-desk/internal/domain"
)

// AssetRequest payload for create and update; omitted fields stay unchanged
// on update. An empty reference id clears it.
type AssetRequest struct {
	AssetTag      *string  `json:"asset_tag" validate:"omitempty,max=64"`
	Name          *string  `json:"name" validate:"omitempty,max=200"`
	AssetTypeID   *string  `json:"asset_type_id" validate:"omitempty,uuid"`
	Status        *string  `json:"status" validate:"omitempty,asset_status"`
	Criticality   *string  `json:"criticality" validate:"omitempty,asset_criticality"`
	Hostname      *string  `json:"hostname" validate:"omitempty,max=255"`
	IPAddress     *string  `json:"ip_address" validate:"omitempty,ip"`
	SerialNumber  *string  `json:"serial_number" validate:"omitempty,max=100"`
	Location      *string  `json:"location" validate:"omitempty,max=200"`
	OwnerID       *string  `json:"owner_id" validate:"omitempty,uuid"`
	SupportTeamID *string  `json:"support_team_id" validate:"omitempty,uuid"`
	Tags          []string `json:"tags" validate:"omitempty,max=20,dive,max=40"`
}

// AssetResponse is the asset representation.
type AssetResponse struct {
	ID            string                  `json:"id"`
	AssetTag      string                  `json:"asset_tag"`
	Name          string                  `json:"name"`
	AssetTypeID   *string                 `json:"asset_type_id"`
	Status        domain.AssetStatus      `json:"status"`
	Criticality   domain.AssetCriticality `json:"criticality"`
	Hostname      string                  `json:"hostname"`
	IPAddress     string                  `json:"ip_address"`
	SerialNumber  string                  `json:"serial_number"`
	Location      string                  `json:"location"`
	OwnerID       *string                 `json:"owner_id"`
	SupportTeamID *string                 `json:"support_team_id"`
	Tags          []string                `json:"tags"`
	CreatedByID   *string                 `json:"created_by_id"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// AssetTypeRequest payload.
type AssetTypeRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// AssetTypeResponse is the asset type representation.
type AssetTypeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
