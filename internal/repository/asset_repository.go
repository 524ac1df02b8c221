package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/service-desk/internal/domain"
)

// AssetFilter captures asset listing parameters.
type AssetFilter struct {
	Status      *domain.AssetStatus
	Criticality *domain.AssetCriticality
	AssetTypeID *string
	Search      *string
	Limit       int
	Offset      int
}

// AssetRepository manages the asset inventory.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	Update(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error)
}

// AssetTypeRepository manages asset classifications.
type AssetTypeRepository interface {
	Create(ctx context.Context, assetType *domain.AssetType) error
	GetByID(ctx context.Context, id string) (*domain.AssetType, error)
	List(ctx context.Context) ([]domain.AssetType, error)
}

const assetColumns = `id, asset_tag, name, asset_type_id, status, criticality, hostname, ip_address,
               serial_number, location, owner_id, support_team_id, tags, created_by_id, created_at, updated_at`

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository constructs repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO assets (asset_tag, name, asset_type_id, status, criticality, hostname, ip_address,
                            serial_number, location, owner_id, support_team_id, tags, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		asset.AssetTag,
		asset.Name,
		asset.AssetTypeID,
		asset.Status,
		asset.Criticality,
		asset.Hostname,
		asset.IPAddress,
		asset.SerialNumber,
		asset.Location,
		asset.OwnerID,
		asset.SupportTeamID,
		nonNilTags(asset.Tags),
		asset.CreatedByID,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	const query = `
        UPDATE assets SET asset_tag=$2, name=$3, asset_type_id=$4, status=$5, criticality=$6, hostname=$7,
               ip_address=$8, serial_number=$9, location=$10, owner_id=$11, support_team_id=$12, tags=$13,
               updated_at=NOW()
        WHERE id=$1
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		asset.ID,
		asset.AssetTag,
		asset.Name,
		asset.AssetTypeID,
		asset.Status,
		asset.Criticality,
		asset.Hostname,
		asset.IPAddress,
		asset.SerialNumber,
		asset.Location,
		asset.OwnerID,
		asset.SupportTeamID,
		nonNilTags(asset.Tags),
	).Scan(&asset.UpdatedAt)
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	return scanAsset(r.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id=$1`, id))
}

func (r *assetRepository) List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error) {
	clauses := []string{"1=1"}
	args := []any{}
	where := func(format string, val any) {
		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}
	if filter.Status != nil {
		where("status=$%d", *filter.Status)
	}
	if filter.Criticality != nil {
		where("criticality=$%d", *filter.Criticality)
	}
	if filter.AssetTypeID != nil {
		where("asset_type_id=$%d", *filter.AssetTypeID)
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Search))+"%")
		p := len(args)
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(hostname) LIKE $%d OR LOWER(asset_tag) LIKE $%d)", p, p, p))
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset, 50)
	query := fmt.Sprintf(`SELECT %s FROM assets WHERE %s ORDER BY asset_tag ASC LIMIT %d OFFSET %d`,
		assetColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *asset)
	}
	return result, rows.Err()
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var a domain.Asset
	if err := row.Scan(
		&a.ID,
		&a.AssetTag,
		&a.Name,
		&a.AssetTypeID,
		&a.Status,
		&a.Criticality,
		&a.Hostname,
		&a.IPAddress,
		&a.SerialNumber,
		&a.Location,
		&a.OwnerID,
		&a.SupportTeamID,
		&a.Tags,
		&a.CreatedByID,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

type assetTypeRepository struct {
	pool *pgxpool.Pool
}

// NewAssetTypeRepository constructs repository.
func NewAssetTypeRepository(pool *pgxpool.Pool) AssetTypeRepository {
	return &assetTypeRepository{pool: pool}
}

func (r *assetTypeRepository) Create(ctx context.Context, assetType *domain.AssetType) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO asset_types (name, description) VALUES ($1,$2) RETURNING id, created_at`,
		assetType.Name, assetType.Description,
	).Scan(&assetType.ID, &assetType.CreatedAt)
}

func (r *assetTypeRepository) GetByID(ctx context.Context, id string) (*domain.AssetType, error) {
	var t domain.AssetType
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, created_at FROM asset_types WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *assetTypeRepository) List(ctx context.Context) ([]domain.AssetType, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at FROM asset_types ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AssetType, error) {
		var t domain.AssetType
		err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt)
		return t, err
	})
}
