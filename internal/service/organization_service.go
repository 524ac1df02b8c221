package service

import (
	"context"
	"strings"
	"time"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/policy"
	"github.com/deskline/service-desk/internal/repository"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// OrganizationService reads and edits the deployment's organization profile.
type OrganizationService struct {
	orgs repository.OrganizationRepository
}

// OrganizationInput carries profile changes; nil means unchanged.
type OrganizationInput struct {
	Name     *string
	Domain   *string
	Timezone *string
	Settings map[string]any
}

func NewOrganizationService(orgs repository.OrganizationRepository) *OrganizationService {
	return &OrganizationService{orgs: orgs}
}

func (s *OrganizationService) Get(ctx context.Context, actor *domain.User) (*domain.Organization, error) {
	if err := requirePermission(actor, policy.ResourceOrganizations, policy.ActionRead); err != nil {
		return nil, err
	}
	org, err := s.orgs.Get(ctx)
	if err != nil {
		return nil, lookupError(err, "organization", "scope", "default")
	}
	return org, nil
}

// Update patches the profile. Settings keys are merged; a null value removes the key.
func (s *OrganizationService) Update(ctx context.Context, actor *domain.User, input OrganizationInput) (*domain.Organization, error) {
	if err := requirePermission(actor, policy.ResourceOrganizations, policy.ActionUpdate); err != nil {
		return nil, err
	}
	org, err := s.orgs.Get(ctx)
	if err != nil {
		return nil, lookupError(err, "organization", "scope", "default")
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"field": "name"})
		}
		org.Name = name
	}
	if input.Domain != nil {
		org.Domain = strings.ToLower(strings.TrimSpace(*input.Domain))
	}
	if input.Timezone != nil {
		tz := strings.TrimSpace(*input.Timezone)
		if _, err := time.LoadLocation(tz); err != nil || tz == "" {
			return nil, apperrors.NewValidationError("unknown timezone", map[string]any{"timezone": tz})
		}
		org.Timezone = tz
	}
	if len(input.Settings) > 0 {
		if org.Settings == nil {
			org.Settings = map[string]any{}
		}
		for key, val := range input.Settings {
			if val == nil {
				delete(org.Settings, key)
				continue
			}
			org.Settings[key] = val
		}
	}
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}
