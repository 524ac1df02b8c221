package domain

import "time"

// Organization is the tenant profile of this deployment. There is exactly one.
type Organization struct {
	ID        string
	Name      string
	Domain    string
	Timezone  string
	Settings  map[string]any
	UpdatedAt time.Time
}
