package dto

import "github.com/deskline/service-desk/internal/workflow"

// WorkflowTestResponse is the dry-run outcome.
type WorkflowTestResponse struct {
	Success       bool            `json:"success"`
	StepsExecuted int             `json:"steps_executed"`
	Message       string          `json:"message"`
	Path          []workflow.Step `json:"path"`
}
