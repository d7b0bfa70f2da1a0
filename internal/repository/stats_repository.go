package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// StatsRepository persists dashboard snapshots.
type StatsRepository interface {
	Create(ctx context.Context, snapshot *domain.StatsSnapshot) error
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.StatsSnapshot, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository builds repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Create(ctx context.Context, snapshot *domain.StatsSnapshot) error {
	stamp(&snapshot.Date)
	const query = `
        INSERT INTO dashboard_stats (user_id, date, total_tickets, open_tickets, closed_tickets, total_users)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		snapshot.UserID,
		snapshot.Date,
		snapshot.TotalTickets,
		snapshot.OpenTickets,
		snapshot.ClosedTickets,
		snapshot.TotalUsers,
	).Scan(&snapshot.ID)
	return translate(err)
}

func (r *statsRepository) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.StatsSnapshot, error) {
	const query = `
        SELECT id, user_id, date, total_tickets, open_tickets, closed_tickets, total_users
        FROM dashboard_stats
        WHERE user_id=$1 AND date >= $2 AND date <= $3
        ORDER BY date ASC`
	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StatsSnapshot, error) {
		var s domain.StatsSnapshot
		err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.TotalTickets, &s.OpenTickets, &s.ClosedTickets, &s.TotalUsers)
		return s, err
	})
}
