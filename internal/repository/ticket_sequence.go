package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// TicketSequence hands out monotonically increasing ticket numbers.
type TicketSequence interface {
	Next(ctx context.Context) (int64, error)
}

type redisTicketSequence struct {
	client *redis.Client
	key    string
}

// NewRedisTicketSequence counts with INCR on key.
func NewRedisTicketSequence(client *redis.Client, key string) TicketSequence {
	return &redisTicketSequence{client: client, key: key}
}

func (s *redisTicketSequence) Next(ctx context.Context) (int64, error) {
	return s.client.Incr(ctx, s.key).Result()
}

type postgresTicketSequence struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketSequence draws from the ticket_number_seq sequence.
func NewPostgresTicketSequence(pool *pgxpool.Pool) TicketSequence {
	return &postgresTicketSequence{pool: pool}
}

func (s *postgresTicketSequence) Next(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT nextval('ticket_number_seq')`).Scan(&n)
	return n, err
}

// SelectTicketSequence picks the numbering authority. The Postgres sequence
// wins whenever a pool exists since it survives restarts alongside the rows it
// numbers; Redis only counts for deployments without a database. It returns nil
// when neither backend is available.
func SelectTicketSequence(pool *pgxpool.Pool, client *redis.Client, key string) TicketSequence {
	switch {
	case pool != nil:
		return NewPostgresTicketSequence(pool)
	case client != nil:
		return NewRedisTicketSequence(client, key)
	default:
		return nil
	}
}
