package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/service-desk/internal/api/dto"
	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/service"
)

// OrganizationHandler serves the organization profile.
type OrganizationHandler struct {
	service *service.OrganizationService
}

// NewOrganizationHandler constructs handler.
func NewOrganizationHandler(orgService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{service: orgService}
}

func (h *OrganizationHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	org, err := h.service.Get(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

func (h *OrganizationHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.OrganizationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	org, err := h.service.Update(c.UserContext(), actor, service.OrganizationInput{
		Name:     req.Name,
		Domain:   req.Domain,
		Timezone: req.Timezone,
		Settings: req.Settings,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

func organizationResponse(o *domain.Organization) dto.OrganizationResponse {
	settings := o.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return dto.OrganizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		Domain:    o.Domain,
		Timezone:  o.Timezone,
		Settings:  settings,
		UpdatedAt: o.UpdatedAt,
	}
}
