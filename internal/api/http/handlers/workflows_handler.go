package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/service-desk/internal/api/dto"
	"github.com/deskline/service-desk/internal/service"
	"github.com/deskline/service-desk/internal/workflow"
)

// WorkflowsHandler exposes workflow dry runs.
type WorkflowsHandler struct {
	service *service.WorkflowService
}

// NewWorkflowsHandler constructs handler.
func NewWorkflowsHandler(workflowService *service.WorkflowService) *WorkflowsHandler {
	return &WorkflowsHandler{service: workflowService}
}

// Test POST /workflows/test.
func (h *WorkflowsHandler) Test(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var def workflow.Definition
	if err := parseBody(c, &def); err != nil {
		return err
	}
	result, err := h.service.Test(c.UserContext(), actor, def)
	if err != nil {
		return err
	}
	return c.JSON(dto.WorkflowTestResponse{
		Success:       true,
		StepsExecuted: result.StepsExecuted,
		Message:       "Workflow test completed successfully",
		Path:          result.Path,
	})
}
