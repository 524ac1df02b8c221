package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/lifecycle"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	RequesterID *string
	AssigneeID  *string
	TeamID      *string
	Statuses    []lifecycle.Status
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	Limit       int
	Offset      int
}

// TicketPatch lists descriptive columns to overwrite. Nil fields keep the
// stored value; status, assignee and closed_at are never touched by a patch.
type TicketPatch struct {
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

// ErrStatusChanged is returned by Transition when the stored status no longer
// matches the one the caller validated against.
var ErrStatusChanged = errors.New("ticket status changed concurrently")

// TicketRepository encapsulates ticket persistence. Writes are column-scoped so
// concurrent edits of different concerns cannot overwrite each other.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Patch(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error)
	Transition(ctx context.Context, id string, from, to lifecycle.Status, closedAt *time.Time) (*domain.Ticket, error)
	SetAssignee(ctx context.Context, id string, assigneeID *string) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

const ticketColumns = `id, number, title, description, status, priority, type, category, urgency, impact, severity,
               channel, requester_id, assignee_id, team_id, tags, due_date, created_at, updated_at, closed_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (number, title, description, status, priority, type, category, urgency, impact, severity,
                             channel, requester_id, assignee_id, team_id, tags, due_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Number,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Type,
		ticket.Category,
		ticket.Urgency,
		ticket.Impact,
		ticket.Severity,
		ticket.Channel,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.TeamID,
		nonNilTags(ticket.Tags),
		ticket.DueDate,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Patch(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error) {
	sets := []string{}
	args := []any{id}
	set := func(column string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Priority != nil {
		set("priority", *patch.Priority)
	}
	if patch.Type != nil {
		set("type", *patch.Type)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Urgency != nil {
		set("urgency", *patch.Urgency)
	}
	if patch.Impact != nil {
		set("impact", *patch.Impact)
	}
	if patch.Severity != nil {
		set("severity", *patch.Severity)
	}
	if patch.Tags != nil {
		set("tags", patch.Tags)
	}
	if patch.ClearDueDate {
		sets = append(sets, "due_date=NULL")
	} else if patch.DueDate != nil {
		set("due_date", *patch.DueDate)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	query := fmt.Sprintf(`UPDATE tickets SET %s, updated_at=NOW() WHERE id=$1 RETURNING %s`,
		strings.Join(sets, ", "), ticketColumns)
	return scanTicket(r.pool.QueryRow(ctx, query, args...))
}

func (r *ticketRepository) Transition(ctx context.Context, id string, from, to lifecycle.Status, closedAt *time.Time) (*domain.Ticket, error) {
	query := `UPDATE tickets SET status=$3, closed_at=$4, updated_at=NOW()
        WHERE id=$1 AND status=$2
        RETURNING ` + ticketColumns
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id, from, to, closedAt))
	if !errors.Is(err, pgx.ErrNoRows) {
		return ticket, err
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id=$1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrStatusChanged
	}
	return nil, pgx.ErrNoRows
}

func (r *ticketRepository) SetAssignee(ctx context.Context, id string, assigneeID *string) (*domain.Ticket, error) {
	query := `UPDATE tickets SET assignee_id=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, query, id, assigneeID))
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("team_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(number) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset, 20)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Type,
		&ticket.Category,
		&ticket.Urgency,
		&ticket.Impact,
		&ticket.Severity,
		&ticket.Channel,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.TeamID,
		&ticket.Tags,
		&ticket.DueDate,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// normalizePage clamps paging values, applying def when limit is unset.
func normalizePage(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
