package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/workflow"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// WorkflowService runs workflow dry runs.
type WorkflowService struct {
	logger *zap.Logger
}

// NewWorkflowService creates the service.
func NewWorkflowService(logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{logger: logger}
}

// Test simulates def and logs each executed step.
func (s *WorkflowService) Test(_ context.Context, actor *domain.User, def workflow.Definition) (workflow.Result, error) {
	if actor == nil {
		return workflow.Result{}, apperrors.NewUnauthorized("authentication required")
	}
	result, err := workflow.Simulate(def)
	if err != nil {
		if errors.Is(err, workflow.ErrNoTrigger) {
			return workflow.Result{}, apperrors.NewValidationError("No trigger nodes found", nil)
		}
		return workflow.Result{}, apperrors.MapError(err)
	}
	for i, step := range result.Path {
		s.logger.Debug("workflow step",
			zap.Int("index", i),
			zap.String("node_id", step.NodeID),
			zap.String("type", step.Type),
			zap.String("via", step.Via))
	}
	s.logger.Info("workflow test completed",
		zap.String("user_id", actor.ID),
		zap.Int("steps_executed", result.StepsExecuted))
	return result, nil
}
