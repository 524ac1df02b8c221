// Package memory holds map-backed repositories used when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/lifecycle"
	"github.com/deskline/service-desk/internal/repository"
)

// Users is an in-memory repository.UserRepository.
type Users struct {
	mu    sync.RWMutex
	items map[string]domain.User
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{items: make(map[string]domain.User)}
}

func (s *Users) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	for _, existing := range s.items {
		if existing.Email == email {
			return duplicate("users_email_key")
		}
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt, user.UpdatedAt = now, now
	s.items[user.ID] = *user
	return nil
}

func (s *Users) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.Email = strings.ToLower(user.Email)
	user.UpdatedAt = time.Now().UTC()
	s.items[user.ID] = *user
	return nil
}

func (s *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, user := range s.items {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *Users) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.User
	for _, user := range s.items {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.TeamID != nil && (user.TeamID == nil || *user.TeamID != *filter.TeamID) {
			continue
		}
		if filter.Active != nil && user.Active != *filter.Active {
			continue
		}
		if term := searchTerm(filter.Search); term != "" &&
			!strings.Contains(strings.ToLower(user.Name), term) && !strings.Contains(user.Email, term) {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset, 50), nil
}

// Teams is an in-memory repository.TeamRepository.
type Teams struct {
	mu    sync.RWMutex
	items map[string]domain.Team
}

// NewTeams returns an empty store.
func NewTeams() *Teams {
	return &Teams{items: make(map[string]domain.Team)}
}

func (s *Teams) Create(_ context.Context, team *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	team.ID = uuid.NewString()
	team.CreatedAt, team.UpdatedAt = now, now
	s.items[team.ID] = *team
	return nil
}

func (s *Teams) Update(_ context.Context, team *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	team.UpdatedAt = time.Now().UTC()
	s.items[team.ID] = *team
	return nil
}

func (s *Teams) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *Teams) GetByID(_ context.Context, id string) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &team, nil
}

func (s *Teams) List(_ context.Context, includeInactive bool) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Team
	for _, team := range s.items {
		if !includeInactive && !team.IsActive {
			continue
		}
		out = append(out, team)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Tickets is an in-memory repository.TicketRepository.
type Tickets struct {
	mu    sync.RWMutex
	items map[string]domain.Ticket
}

// NewTickets returns an empty store.
func NewTickets() *Tickets {
	return &Tickets{items: make(map[string]domain.Ticket)}
}

func (s *Tickets) Create(_ context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.Number == ticket.Number {
			return duplicate("tickets_number_key")
		}
	}
	now := time.Now().UTC()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	s.items[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (s *Tickets) Patch(_ context.Context, id string, patch repository.TicketPatch) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	for _, f := range []struct {
		val *string
		dst *string
	}{
		{patch.Title, &ticket.Title},
		{patch.Description, &ticket.Description},
		{patch.Type, &ticket.Type},
		{patch.Category, &ticket.Category},
		{patch.Urgency, &ticket.Urgency},
		{patch.Impact, &ticket.Impact},
		{patch.Severity, &ticket.Severity},
	} {
		if f.val != nil {
			*f.dst = *f.val
		}
	}
	if patch.Priority != nil {
		ticket.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		ticket.Tags = patch.Tags
	}
	if patch.ClearDueDate {
		ticket.DueDate = nil
	} else if patch.DueDate != nil {
		due := *patch.DueDate
		ticket.DueDate = &due
	}
	return s.store(ticket), nil
}

func (s *Tickets) Transition(_ context.Context, id string, from, to lifecycle.Status, closedAt *time.Time) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if ticket.Status != from {
		return nil, repository.ErrStatusChanged
	}
	ticket.Status = to
	ticket.ClosedAt = closedAt
	return s.store(ticket), nil
}

func (s *Tickets) SetAssignee(_ context.Context, id string, assigneeID *string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket.AssigneeID = assigneeID
	return s.store(ticket), nil
}

// store saves ticket with a fresh updated_at and returns a caller-owned copy.
// s.mu must be held.
func (s *Tickets) store(ticket domain.Ticket) *domain.Ticket {
	ticket.UpdatedAt = time.Now().UTC()
	s.items[ticket.ID] = cloneTicket(ticket)
	out := cloneTicket(ticket)
	return &out
}

func (s *Tickets) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *Tickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ticket, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t := cloneTicket(ticket)
	return &t, nil
}

func (s *Tickets) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term := searchTerm(filter.SearchTerm)
	var out []domain.Ticket
	for _, ticket := range s.items {
		if !matchesPtr(filter.RequesterID, ticket.RequesterID) ||
			!matchesPtr(filter.AssigneeID, ticket.AssigneeID) ||
			!matchesPtr(filter.TeamID, ticket.TeamID) {
			continue
		}
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !contains(filter.Priorities, ticket.Priority) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(ticket.Title), term) &&
			!strings.Contains(strings.ToLower(ticket.Description), term) &&
			!strings.Contains(strings.ToLower(ticket.Number), term) {
			continue
		}
		out = append(out, cloneTicket(ticket))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return page(out, filter.Limit, filter.Offset, 20), nil
}

// History is an in-memory repository.TicketHistoryRepository.
type History struct {
	mu    sync.RWMutex
	items []domain.TicketHistory
}

// NewHistory returns an empty store.
func NewHistory() *History {
	return &History{}
}

func (s *History) Create(_ context.Context, history *domain.TicketHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history.ID = uuid.NewString()
	history.CreatedAt = time.Now().UTC()
	s.items = append(s.items, *history)
	return nil
}

func (s *History) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.TicketHistory
	for _, h := range s.items {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out, nil
}

// Sequence is a process-local ticket counter.
type Sequence struct {
	n atomic.Int64
}

// NewSequence returns a counter starting at zero.
func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) Next(_ context.Context) (int64, error) {
	return s.n.Add(1), nil
}

var (
	_ repository.UserRepository          = (*Users)(nil)
	_ repository.TeamRepository          = (*Teams)(nil)
	_ repository.TicketRepository        = (*Tickets)(nil)
	_ repository.TicketHistoryRepository = (*History)(nil)
	_ repository.TicketSequence          = (*Sequence)(nil)
)

// duplicate mimics the driver error Postgres returns for a unique constraint.
func duplicate(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.Tags != nil {
		t.Tags = append([]string(nil), t.Tags...)
	}
	return t
}

func matchesPtr(want, got *string) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func searchTerm(val *string) string {
	if val == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*val))
}

func page[T any](items []T, limit, offset, def int) []T {
	if limit <= 0 {
		limit = def
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
