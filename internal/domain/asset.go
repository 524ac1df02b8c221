package domain

import (
	"strings"
	"time"
)

// AssetStatus tracks where a configuration item is in its life.
type AssetStatus string

const (
	AssetStatusActive      AssetStatus = "active"
	AssetStatusInactive    AssetStatus = "inactive"
	AssetStatusMaintenance AssetStatus = "maintenance"
	AssetStatusRetired     AssetStatus = "retired"
	AssetStatusDisposed    AssetStatus = "disposed"
)

var assetStatuses = []AssetStatus{AssetStatusActive, AssetStatusInactive, AssetStatusMaintenance, AssetStatusRetired, AssetStatusDisposed}

// ParseAssetStatus matches val against the known statuses ignoring case.
func ParseAssetStatus(val string) (AssetStatus, bool) {
	for _, s := range assetStatuses {
		if strings.EqualFold(strings.TrimSpace(val), string(s)) {
			return s, true
		}
	}
	return "", false
}

// AssetCriticality ranks business impact when an asset fails.
type AssetCriticality string

const (
	CriticalityLow      AssetCriticality = "low"
	CriticalityMedium   AssetCriticality = "medium"
	CriticalityHigh     AssetCriticality = "high"
	CriticalityCritical AssetCriticality = "critical"
)

var criticalities = []AssetCriticality{CriticalityLow, CriticalityMedium, CriticalityHigh, CriticalityCritical}

// ParseCriticality matches val against the known levels ignoring case.
func ParseCriticality(val string) (AssetCriticality, bool) {
	for _, c := range criticalities {
		if strings.EqualFold(strings.TrimSpace(val), string(c)) {
			return c, true
		}
	}
	return "", false
}

// AssetType classifies assets, e.g. laptop or server.
type AssetType struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Asset is a tracked piece of hardware, software or service.
type Asset struct {
	ID            string
	AssetTag      string
	Name          string
	AssetTypeID   *string
	Status        AssetStatus
	Criticality   AssetCriticality
	Hostname      string
	IPAddress     string
	SerialNumber  string
	Location      string
	OwnerID       *string
	SupportTeamID *string
	Tags          []string
	CreatedByID   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
