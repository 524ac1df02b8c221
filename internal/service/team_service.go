package service

import (
	"context"
	"strings"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/policy"
	"github.com/deskline/service-desk/internal/repository"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// TeamService handles team CRUD.
type TeamService struct {
	teams repository.TeamRepository
	users repository.UserRepository
}

// TeamInput is the writable team shape.
type TeamInput struct {
	Name        string
	Description string
	LeadID      *string
	IsActive    *bool
}

// NewTeamService creates the service.
func NewTeamService(teams repository.TeamRepository, users repository.UserRepository) *TeamService {
	return &TeamService{teams: teams, users: users}
}

func (s *TeamService) CreateTeam(ctx context.Context, actor *domain.User, input TeamInput) (*domain.Team, error) {
	if err := requirePermission(actor, policy.ResourceTeams, policy.ActionCreate); err != nil {
		return nil, err
	}
	team := &domain.Team{IsActive: true}
	if err := s.apply(ctx, team, input); err != nil {
		return nil, err
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

func (s *TeamService) ListTeams(ctx context.Context, actor *domain.User, includeInactive bool) ([]domain.Team, error) {
	if err := requirePermission(actor, policy.ResourceTeams, policy.ActionRead); err != nil {
		return nil, err
	}
	teams, err := s.teams.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return teams, nil
}

func (s *TeamService) GetTeam(ctx context.Context, actor *domain.User, id string) (*domain.Team, error) {
	if err := requirePermission(actor, policy.ResourceTeams, policy.ActionRead); err != nil {
		return nil, err
	}
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "team", "team_id", id)
	}
	return team, nil
}

func (s *TeamService) UpdateTeam(ctx context.Context, actor *domain.User, id string, input TeamInput) (*domain.Team, error) {
	if err := requirePermission(actor, policy.ResourceTeams, policy.ActionUpdate); err != nil {
		return nil, err
	}
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "team", "team_id", id)
	}
	if err := s.apply(ctx, team, input); err != nil {
		return nil, err
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

func (s *TeamService) DeleteTeam(ctx context.Context, actor *domain.User, id string) error {
	if err := requirePermission(actor, policy.ResourceTeams, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.teams.Delete(ctx, id); err != nil {
		return lookupError(err, "team", "team_id", id)
	}
	return nil
}

func (s *TeamService) apply(ctx context.Context, team *domain.Team, input TeamInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	team.Name = name
	team.Description = strings.TrimSpace(input.Description)
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}
	team.LeadID = nil
	if input.LeadID != nil && *input.LeadID != "" {
		lead, err := s.users.GetByID(ctx, *input.LeadID)
		if err != nil {
			return lookupError(err, "user", "user_id", *input.LeadID)
		}
		team.LeadID = &lead.ID
	}
	return nil
}
