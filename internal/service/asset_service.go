package service

import (
	"context"
	"strings"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/policy"
	"github.com/deskline/service-desk/internal/repository"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// AssetService manages the asset inventory and its types.
type AssetService struct {
	assets repository.AssetRepository
	types  repository.AssetTypeRepository
	users  repository.UserRepository
	teams  repository.TeamRepository
}

// AssetInput carries writable asset fields; nil means unchanged on update.
type AssetInput struct {
	AssetTag      *string
	Name          *string
	AssetTypeID   *string
	Status        *domain.AssetStatus
	Criticality   *domain.AssetCriticality
	Hostname      *string
	IPAddress     *string
	SerialNumber  *string
	Location      *string
	OwnerID       *string
	SupportTeamID *string
	Tags          []string
}

// NewAssetService creates the service.
func NewAssetService(assets repository.AssetRepository, types repository.AssetTypeRepository, users repository.UserRepository, teams repository.TeamRepository) *AssetService {
	return &AssetService{assets: assets, types: types, users: users, teams: teams}
}

func (s *AssetService) CreateAsset(ctx context.Context, actor *domain.User, input AssetInput) (*domain.Asset, error) {
	if err := requirePermission(actor, policy.ResourceAssets, policy.ActionCreate); err != nil {
		return nil, err
	}
	if input.AssetTag == nil || strings.TrimSpace(*input.AssetTag) == "" {
		return nil, apperrors.NewValidationError("asset_tag is required", map[string]any{"field": "asset_tag"})
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	asset := &domain.Asset{
		Status:      domain.AssetStatusActive,
		Criticality: domain.CriticalityMedium,
		CreatedByID: &actor.ID,
	}
	if err := s.apply(ctx, asset, input); err != nil {
		return nil, err
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

func (s *AssetService) ListAssets(ctx context.Context, actor *domain.User, filter repository.AssetFilter) ([]domain.Asset, error) {
	if err := requirePermission(actor, policy.ResourceAssets, policy.ActionRead); err != nil {
		return nil, err
	}
	assets, err := s.assets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if assets == nil {
		assets = []domain.Asset{}
	}
	return assets, nil
}

func (s *AssetService) GetAsset(ctx context.Context, actor *domain.User, id string) (*domain.Asset, error) {
	if err := requirePermission(actor, policy.ResourceAssets, policy.ActionRead); err != nil {
		return nil, err
	}
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "asset", "asset_id", id)
	}
	return asset, nil
}

func (s *AssetService) UpdateAsset(ctx context.Context, actor *domain.User, id string, input AssetInput) (*domain.Asset, error) {
	if err := requirePermission(actor, policy.ResourceAssets, policy.ActionUpdate); err != nil {
		return nil, err
	}
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "asset", "asset_id", id)
	}
	if err := s.apply(ctx, asset, input); err != nil {
		return nil, err
	}
	if err := s.assets.Update(ctx, asset); err != nil {
		return nil, lookupError(err, "asset", "asset_id", id)
	}
	return asset, nil
}

func (s *AssetService) DeleteAsset(ctx context.Context, actor *domain.User, id string) error {
	if err := requirePermission(actor, policy.ResourceAssets, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.assets.Delete(ctx, id); err != nil {
		return lookupError(err, "asset", "asset_id", id)
	}
	return nil
}

func (s *AssetService) CreateAssetType(ctx context.Context, actor *domain.User, name, description string) (*domain.AssetType, error) {
	if err := requirePermission(actor, policy.ResourceAssets, policy.ActionCreate); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	assetType := &domain.AssetType{Name: name, Description: strings.TrimSpace(description)}
	if err := s.types.Create(ctx, assetType); err != nil {
		return nil, apperrors.MapError(err)
	}
	return assetType, nil
}

func (s *AssetService) ListAssetTypes(ctx context.Context, actor *domain.User) ([]domain.AssetType, error) {
	if err := requirePermission(actor, policy.ResourceAssets, policy.ActionRead); err != nil {
		return nil, err
	}
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if types == nil {
		types = []domain.AssetType{}
	}
	return types, nil
}

// apply validates references and copies set fields onto asset. An empty
// string clears an optional reference.
func (s *AssetService) apply(ctx context.Context, asset *domain.Asset, input AssetInput) error {
	if input.AssetTag != nil {
		tag := strings.ToUpper(strings.TrimSpace(*input.AssetTag))
		if tag == "" {
			return apperrors.NewValidationError("asset_tag cannot be empty", map[string]any{"field": "asset_tag"})
		}
		asset.AssetTag = tag
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return apperrors.NewValidationError("name cannot be empty", map[string]any{"field": "name"})
		}
		asset.Name = name
	}
	if input.Status != nil {
		asset.Status = *input.Status
	}
	if input.Criticality != nil {
		asset.Criticality = *input.Criticality
	}
	for _, f := range []struct {
		dst *string
		val *string
	}{
		{&asset.Hostname, input.Hostname},
		{&asset.IPAddress, input.IPAddress},
		{&asset.SerialNumber, input.SerialNumber},
		{&asset.Location, input.Location},
	} {
		if f.val != nil {
			*f.dst = strings.TrimSpace(*f.val)
		}
	}
	if input.Tags != nil {
		asset.Tags = input.Tags
	}

	if input.AssetTypeID != nil {
		asset.AssetTypeID = nil
		if *input.AssetTypeID != "" {
			t, err := s.types.GetByID(ctx, *input.AssetTypeID)
			if err != nil {
				return lookupError(err, "asset_type", "asset_type_id", *input.AssetTypeID)
			}
			asset.AssetTypeID = &t.ID
		}
	}
	if input.OwnerID != nil {
		asset.OwnerID = nil
		if *input.OwnerID != "" {
			owner, err := s.users.GetByID(ctx, *input.OwnerID)
			if err != nil {
				return lookupError(err, "user", "user_id", *input.OwnerID)
			}
			asset.OwnerID = &owner.ID
		}
	}
	if input.SupportTeamID != nil {
		asset.SupportTeamID = nil
		if *input.SupportTeamID != "" {
			team, err := s.teams.GetByID(ctx, *input.SupportTeamID)
			if err != nil {
				return lookupError(err, "team", "team_id", *input.SupportTeamID)
			}
			asset.SupportTeamID = &team.ID
		}
	}
	return nil
}
