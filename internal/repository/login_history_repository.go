package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LoginHistoryRepository records successful logins.
type LoginHistoryRepository interface {
	Create(ctx context.Context, entry *domain.LoginHistory) error
	ListByUser(ctx context.Context, userID string) ([]domain.LoginHistory, error)
	ListRecent(ctx context.Context, limit int) ([]domain.LoginHistory, error)
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.LoginHistory, error)
	Delete(ctx context.Context, id string) error
}

type loginHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewLoginHistoryRepository builds repository.
func NewLoginHistoryRepository(pool *pgxpool.Pool) LoginHistoryRepository {
	return &loginHistoryRepository{pool: pool}
}

func (r *loginHistoryRepository) Create(ctx context.Context, entry *domain.LoginHistory) error {
	stamp(&entry.CreatedAt)
	const query = `
        INSERT INTO login_history (user_id, ip_address, device_info, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		entry.UserID,
		entry.IPAddress,
		entry.DeviceInfo,
		entry.CreatedAt,
	).Scan(&entry.ID)
	return translate(err)
}

func (r *loginHistoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.LoginHistory, error) {
	const query = `
        SELECT id, user_id, ip_address, device_info, created_at
        FROM login_history WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *loginHistoryRepository) ListRecent(ctx context.Context, limit int) ([]domain.LoginHistory, error) {
	const query = `
        SELECT id, user_id, ip_address, device_info, created_at
        FROM login_history ORDER BY created_at DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *loginHistoryRepository) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.LoginHistory, error) {
	const query = `
        SELECT id, user_id, ip_address, device_info, created_at
        FROM login_history WHERE created_at < $1 ORDER BY created_at ASC`
	return r.list(ctx, query, cutoff)
}

func (r *loginHistoryRepository) Delete(ctx context.Context, id string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM login_history WHERE id=$1`, id))
}

func (r *loginHistoryRepository) list(ctx context.Context, query string, arg any) ([]domain.LoginHistory, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LoginHistory, error) {
		var entry domain.LoginHistory
		err := row.Scan(&entry.ID, &entry.UserID, &entry.IPAddress, &entry.DeviceInfo, &entry.CreatedAt)
		return entry, err
	})
}
