package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AuditRepository stores append-only audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListByUser(ctx context.Context, userID string) ([]domain.AuditLog, error)
	ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error)
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.AuditLog, error)
	Delete(ctx context.Context, id string) error
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	stamp(&entry.CreatedAt)
	const query = `
        INSERT INTO audit_logs (action, details, user_id, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		entry.Action,
		entry.Details,
		entry.UserID,
		entry.CreatedAt,
	).Scan(&entry.ID)
	return translate(err)
}

func (r *auditRepository) ListByUser(ctx context.Context, userID string) ([]domain.AuditLog, error) {
	const query = `
        SELECT id, action, details, user_id, created_at
        FROM audit_logs WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	const query = `
        SELECT id, action, details, user_id, created_at
        FROM audit_logs ORDER BY created_at DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *auditRepository) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.AuditLog, error) {
	const query = `
        SELECT id, action, details, user_id, created_at
        FROM audit_logs WHERE created_at < $1 ORDER BY created_at ASC`
	return r.list(ctx, query, cutoff)
}

func (r *auditRepository) Delete(ctx context.Context, id string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM audit_logs WHERE id=$1`, id))
}

func (r *auditRepository) list(ctx context.Context, query string, arg any) ([]domain.AuditLog, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuditLog, error) {
		var entry domain.AuditLog
		err := row.Scan(&entry.ID, &entry.Action, &entry.Details, &entry.UserID, &entry.CreatedAt)
		return entry, err
	})
}
