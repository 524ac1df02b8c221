package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/events"
	"github.com/deskline/service-desk/internal/lifecycle"
	"github.com/deskline/service-desk/internal/policy"
	"github.com/deskline/service-desk/internal/repository"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	comments   repository.TicketCommentRepository
	users      repository.UserRepository
	teams      repository.TeamRepository
	sequence   repository.TicketSequence
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	CommentRepo repository.TicketCommentRepository
	UserRepo    repository.UserRepository
	TeamRepo    repository.TeamRepository
	Sequence    repository.TicketSequence
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Type        string
	Category    string
	Urgency     string
	Impact      string
	Severity    string
	Channel     string
	TeamID      *string
	RequesterID *string
	Tags        []string
	DueDate     *time.Time
}

// TicketUpdateInput carries optional field changes; nil means unchanged.
type TicketUpdateInput struct {
	Title        *string
	Description  *string
	Priority     *domain.TicketPriority
	Type         *string
	Category     *string
	Urgency      *string
	Impact       *string
	Severity     *string
	Tags         []string
	DueDate      *time.Time
	ClearDueDate bool
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	TeamID     *string
	AssigneeID *string
	Statuses   []lifecycle.Status
	Priorities []domain.TicketPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		teams:      deps.TeamRepo,
		sequence:   deps.Sequence,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket opens a ticket. Callers without tickets:assign always file for themselves.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requirePermission(actor, policy.ResourceTickets, policy.ActionCreate); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if input.TeamID != nil {
		if err := s.requireActiveTeam(ctx, *input.TeamID); err != nil {
			return nil, err
		}
	}

	requesterID := actor.ID
	if input.RequesterID != nil && *input.RequesterID != actor.ID && actor.Can(policy.ResourceTickets, policy.ActionAssign) {
		requester, err := s.users.GetByID(ctx, *input.RequesterID)
		if err != nil {
			return nil, lookupError(err, "user", "user_id", *input.RequesterID)
		}
		requesterID = requester.ID
	}

	ticket := &domain.Ticket{
		Number:      s.nextNumber(ctx),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      lifecycle.Initial,
		Priority:    input.Priority,
		Type:        withDefault(input.Type, domain.DefaultTicketType),
		Category:    strings.TrimSpace(input.Category),
		Urgency:     withDefault(input.Urgency, domain.DefaultRating),
		Impact:      withDefault(input.Impact, domain.DefaultRating),
		Severity:    withDefault(input.Severity, domain.DefaultRating),
		Channel:     domain.NormalizeChannel(input.Channel),
		RequesterID: &requesterID,
		TeamID:      input.TeamID,
		Tags:        input.Tags,
		DueDate:     input.DueDate,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	err := s.tickets.Create(ctx, ticket)
	if apperrors.IsUniqueViolation(err) {
		s.logger.Warn("ticket number taken; retrying with random key", zap.String("number", ticket.Number))
		ticket.Number = randomNumber()
		err = s.tickets.Create(ctx, ticket)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.record(ctx, actor, ticket.ID, domain.ChangeTypeCreated, nil, map[string]any{
		"status":   ticket.Status,
		"priority": ticket.Priority,
	}, ""); err != nil {
		return nil, err
	}
	s.publish(ctx, actor, ticket, events.EventTicketCreated, events.TicketCreatedPayload{
		Number:   ticket.Number,
		TeamID:   ticket.TeamID,
		Priority: ticket.Priority,
		Title:    ticket.Title,
	})
	return ticket, nil
}

// ListTickets returns tickets visible to actor. The user role only sees its own requests.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if err := requirePermission(actor, policy.ResourceTickets, policy.ActionRead); err != nil {
		return nil, err
	}
	repoFilter := repository.TicketFilter{
		TeamID:     filter.TeamID,
		AssigneeID: filter.AssigneeID,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if actor.Role == policy.RoleUser {
		repoFilter.RequesterID = &actor.ID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// GetTicket fetches a ticket and its history.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []domain.TicketHistory, error) {
	if err := requirePermission(actor, policy.ResourceTickets, policy.ActionRead); err != nil {
		return nil, nil, err
	}
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, nil, err
	}
	history := []domain.TicketHistory{}
	if s.history != nil {
		entries, err := s.history.ListByTicket(ctx, ticket.ID)
		if err != nil {
			return nil, nil, apperrors.MapError(err)
		}
		if entries != nil {
			history = entries
		}
		if !seesInternal(actor) {
			history = withoutInternalNotes(history)
		}
	}
	return ticket, history, nil
}

// UpdateTicket edits descriptive fields. Status and assignee have their own operations.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	if err := requirePermission(actor, policy.ResourceTickets, policy.ActionUpdate); err != nil {
		return nil, err
	}
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	patch := repository.TicketPatch{
		Description: trimmed(input.Description),
		Type:        trimmed(input.Type),
		Category:    trimmed(input.Category),
		Urgency:     trimmed(input.Urgency),
		Impact:      trimmed(input.Impact),
		Severity:    trimmed(input.Severity),
		Tags:        input.Tags,
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", map[string]any{"field": "title"})
		}
		patch.Title = &title
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		patch.Priority = input.Priority
	}
	if input.ClearDueDate {
		patch.ClearDueDate = true
	} else {
		patch.DueDate = input.DueDate
	}

	var fields []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"title", patch.Title != nil},
		{"description", patch.Description != nil},
		{"type", patch.Type != nil},
		{"category", patch.Category != nil},
		{"urgency", patch.Urgency != nil},
		{"impact", patch.Impact != nil},
		{"severity", patch.Severity != nil},
		{"tags", patch.Tags != nil},
		{"due_date", patch.ClearDueDate || patch.DueDate != nil},
	} {
		if f.set {
			fields = append(fields, f.name)
		}
	}

	oldPriority := ticket.Priority
	ticket, err = s.tickets.Patch(ctx, ticket.ID, patch)
	if err != nil {
		return nil, lookupError(err, "ticket", "ticket_id", ticketID)
	}

	if ticket.Priority != oldPriority {
		if err := s.record(ctx, actor, ticket.ID, domain.ChangeTypePriority,
			map[string]any{"priority": oldPriority}, map[string]any{"priority": ticket.Priority}, ""); err != nil {
			return nil, err
		}
		s.publish(ctx, actor, ticket, events.EventTicketPriorityChanged, events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: ticket.Priority,
		})
	}
	if len(fields) > 0 {
		if err := s.record(ctx, actor, ticket.ID, domain.ChangeTypeDetails, nil, map[string]any{"fields": fields}, ""); err != nil {
			return nil, err
		}
		s.publish(ctx, actor, ticket, events.EventTicketUpdated, events.TicketUpdatedPayload{Fields: fields})
	}
	return ticket, nil
}

// DeleteTicket removes a ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	if err := requirePermission(actor, policy.ResourceTickets, policy.ActionDelete); err != nil {
		return err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return lookupError(err, "ticket", "ticket_id", ticketID)
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return lookupError(err, "ticket", "ticket_id", ticketID)
	}
	s.publish(ctx, actor, ticket, events.EventTicketDeleted, nil)
	return nil
}

// AvailableTransitions lists the statuses actor may move the ticket to.
// Callers lacking tickets:transition get an empty list.
func (s *TicketService) AvailableTransitions(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []lifecycle.Status, error) {
	if err := requirePermission(actor, policy.ResourceTickets, policy.ActionRead); err != nil {
		return nil, nil, err
	}
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.Can(policy.ResourceTickets, policy.ActionTransition) {
		return ticket, []lifecycle.Status{}, nil
	}
	return ticket, lifecycle.NextStatuses(ticket.Status), nil
}

// ChangeStatus moves a ticket along the lifecycle.
func (s *TicketService) ChangeStatus(ctx context.Context, actor *domain.User, ticketID string, next lifecycle.Status, comment string) (*domain.Ticket, error) {
	if err := requirePermission(actor, policy.ResourceTickets, policy.ActionTransition); err != nil {
		return nil, err
	}
	if !next.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": next})
	}
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	current := ticket.Status
	if !lifecycle.CanTransition(current, next) {
		allowed := lifecycle.NextStatuses(current)
		labels := make([]string, len(allowed))
		for i, st := range allowed {
			labels[i] = string(st)
		}
		return nil, apperrors.NewInvalidTransition(string(current), string(next), labels)
	}

	var closedAt *time.Time
	if next == lifecycle.StatusClosed {
		now := time.Now().UTC()
		closedAt = &now
	}
	ticket, err = s.tickets.Transition(ctx, ticket.ID, current, next, closedAt)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, apperrors.NewConflict("ticket status changed concurrently; reload and retry", map[string]any{
			"ticket_id":       ticketID,
			"expected_status": current,
		})
	}
	if err != nil {
		return nil, lookupError(err, "ticket", "ticket_id", ticketID)
	}
	comment = strings.TrimSpace(comment)
	if err := s.record(ctx, actor, ticket.ID, domain.ChangeTypeStatus,
		map[string]any{"status": current}, map[string]any{"status": next}, comment); err != nil {
		return nil, err
	}
	s.publish(ctx, actor, ticket, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
		OldStatus: current,
		NewStatus: next,
		Comment:   comment,
	})
	return ticket, nil
}

// AssignTicket sets or clears the assignee. Assignees must be active and able to work tickets.
func (s *TicketService) AssignTicket(ctx context.Context, actor *domain.User, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	if err := requirePermission(actor, policy.ResourceTickets, policy.ActionAssign); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", "ticket_id", ticketID)
	}
	if assigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			return nil, lookupError(err, "user", "user_id", *assigneeID)
		}
		if !assignee.Active {
			return nil, apperrors.NewConflict("assignee inactive", map[string]any{"user_id": assignee.ID})
		}
		if !assignee.Can(policy.ResourceTickets, policy.ActionUpdate) {
			return nil, apperrors.NewConflict("assignee cannot work tickets", map[string]any{
				"user_id": assignee.ID,
				"role":    assignee.Role,
			})
		}
	}

	oldAssignee := ticket.AssigneeID
	ticket, err = s.tickets.SetAssignee(ctx, ticket.ID, assigneeID)
	if err != nil {
		return nil, lookupError(err, "ticket", "ticket_id", ticketID)
	}
	if err := s.record(ctx, actor, ticket.ID, domain.ChangeTypeAssignee,
		map[string]any{"assignee_id": oldAssignee}, map[string]any{"assignee_id": assigneeID}, ""); err != nil {
		return nil, err
	}
	s.publish(ctx, actor, ticket, events.EventTicketAssigned, events.TicketAssignedPayload{
		AssigneeID: ticket.AssigneeID,
		TeamID:     ticket.TeamID,
	})
	return ticket, nil
}

// visibleTicket loads a ticket, hiding other people's tickets from the user role.
func (s *TicketService) visibleTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", "ticket_id", ticketID)
	}
	if actor.Role == policy.RoleUser && !ticket.IsRequestedBy(actor.ID) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

func (s *TicketService) requireActiveTeam(ctx context.Context, teamID string) error {
	if s.teams == nil {
		return nil
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return lookupError(err, "team", "team_id", teamID)
	}
	if !team.IsActive {
		return apperrors.NewConflict("team inactive", map[string]any{"team_id": teamID})
	}
	return nil
}

// nextNumber formats the next sequence value; on sequence failure it falls
// back to a random key so ticket intake never stalls.
func (s *TicketService) nextNumber(ctx context.Context) string {
	if s.sequence != nil {
		n, err := s.sequence.Next(ctx)
		if err == nil {
			return fmt.Sprintf("TK-%04d", n)
		}
		s.logger.Warn("ticket sequence unavailable", zap.Error(err))
	}
	return randomNumber()
}

func randomNumber() string {
	return "TK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) record(ctx context.Context, actor *domain.User, ticketID string, change domain.TicketChangeType, oldValue, newValue map[string]any, comment string) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketID:   ticketID,
		ChangeType: change,
		OldValue:   oldValue,
		NewValue:   newValue,
		Comment:    comment,
	}
	if actor != nil {
		entry.ChangedByID = &actor.ID
	}
	return apperrors.MapError(s.history.Create(ctx, entry))
}

func (s *TicketService) publish(ctx context.Context, actor *domain.User, ticket *domain.Ticket, eventType events.EventType, payload any) {
	publish(ctx, s.dispatcher, s.logger, s.event(actor, ticket, eventType, payload))
}

func (s *TicketService) event(actor *domain.User, ticket *domain.Ticket, eventType events.EventType, payload any) events.Event {
	event := events.Event{
		Type:     eventType,
		TicketID: ticket.ID,
		Actor:    actorOf(actor),
		Payload:  payload,
	}
	if ticket.RequesterID != nil {
		event.RequesterID = *ticket.RequesterID
	}
	return event
}

func trimmed(val *string) *string {
	if val == nil {
		return nil
	}
	v := strings.TrimSpace(*val)
	return &v
}

func withDefault(val, def string) string {
	if v := strings.TrimSpace(val); v != "" {
		return v
	}
	return def
}
