package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/service-desk/internal/api/dto"
	"github.com/deskline/service-desk/internal/auth"
	"github.com/deskline/service-desk/internal/domain"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
	"github.com/deskline/service-desk/pkg/validator"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

// parseBody decodes the JSON body into req and runs struct validation.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return validator.Validate(req)
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.TicketResponse{
		ID:           t.ID,
		TicketNumber: t.Number,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		Type:         t.Type,
		Category:     t.Category,
		Urgency:      t.Urgency,
		Impact:       t.Impact,
		Severity:     t.Severity,
		Channel:      t.Channel,
		RequesterID:  t.RequesterID,
		AssigneeID:   t.AssigneeID,
		TeamID:       t.TeamID,
		Tags:         tags,
		DueDate:      t.DueDate,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		ClosedAt:     t.ClosedAt,
	}
}

func ticketDetail(t *domain.Ticket, history []domain.TicketHistory) dto.TicketDetailResponse {
	entries := make([]dto.TicketHistoryResponse, 0, len(history))
	for _, h := range history {
		entries = append(entries, dto.TicketHistoryResponse{
			ID:          h.ID,
			ChangeType:  h.ChangeType,
			ChangedByID: h.ChangedByID,
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			Comment:     h.Comment,
			CreatedAt:   h.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{TicketResponse: ticketResponse(t), History: entries}
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		TeamID:    u.TeamID,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func teamResponse(t *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		LeadID:      t.LeadID,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
