package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/service-desk/internal/domain"
)

// TicketHistoryRepository is append-only; entries are never edited.
type TicketHistoryRepository interface {
	Create(ctx context.Context, entry *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

type pgTicketHistory struct {
	pool *pgxpool.Pool
}

func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &pgTicketHistory{pool: pool}
}

func (r *pgTicketHistory) Create(ctx context.Context, entry *domain.TicketHistory) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO ticket_history (ticket_id, changed_by_id, change_type, old_value, new_value, comment)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		entry.TicketID, entry.ChangedByID, entry.ChangeType, entry.OldValue, entry.NewValue, entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByTicket returns the trail oldest first. Ties on created_at are
// broken by id so repeated reads agree.
func (r *pgTicketHistory) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, ticket_id, changed_by_id, change_type, old_value, new_value, comment, created_at
		 FROM ticket_history
		 WHERE ticket_id = $1
		 ORDER BY created_at, id`, ticketID)
	if err != nil {
		return nil, err
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TicketHistory, error) {
		var h domain.TicketHistory
		err := row.Scan(&h.ID, &h.TicketID, &h.ChangedByID, &h.ChangeType, &h.OldValue, &h.NewValue, &h.Comment, &h.CreatedAt)
		return h, err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
