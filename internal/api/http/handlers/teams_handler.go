package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/service-desk/internal/api/dto"
	"github.com/deskline/service-desk/internal/service"
)

// TeamsHandler serves team CRUD.
type TeamsHandler struct {
	service *service.TeamService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(teamService *service.TeamService) *TeamsHandler {
	return &TeamsHandler{service: teamService}
}

func (h *TeamsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TeamRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.service.CreateTeam(c.UserContext(), actor, teamInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": teamResponse(team)})
}

func (h *TeamsHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	teams, err := h.service.ListTeams(c.UserContext(), actor, c.QueryBool("include_inactive"))
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, teamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *TeamsHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	team, err := h.service.GetTeam(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

func (h *TeamsHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TeamRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.service.UpdateTeam(c.UserContext(), actor, c.Params("id"), teamInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

func (h *TeamsHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTeam(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func teamInput(req dto.TeamRequest) service.TeamInput {
	return service.TeamInput{
		Name:        req.Name,
		Description: req.Description,
		LeadID:      req.LeadID,
		IsActive:    req.IsActive,
	}
}
