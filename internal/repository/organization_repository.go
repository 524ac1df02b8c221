package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/service-desk/internal/domain"
)

// OrganizationRepository reads and writes the single organization row.
type OrganizationRepository interface {
	Get(ctx context.Context) (*domain.Organization, error)
	Update(ctx context.Context, org *domain.Organization) error
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository constructs repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Get(ctx context.Context) (*domain.Organization, error) {
	var org domain.Organization
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, domain, timezone, settings, updated_at FROM organization WHERE singleton`,
	).Scan(&org.ID, &org.Name, &org.Domain, &org.Timezone, &org.Settings, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	settings := org.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return r.pool.QueryRow(ctx,
		`UPDATE organization SET name=$1, domain=$2, timezone=$3, settings=$4, updated_at=NOW()
		 WHERE singleton
		 RETURNING id, updated_at`,
		org.Name, org.Domain, org.Timezone, settings,
	).Scan(&org.ID, &org.UpdatedAt)
}
