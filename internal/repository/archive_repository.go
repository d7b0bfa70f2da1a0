package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ArchiveRepository stores serialized copies of rows removed by retention.
type ArchiveRepository interface {
	Create(ctx context.Context, archived *domain.ArchivedData) error
	ListByTable(ctx context.Context, tableName string) ([]domain.ArchivedData, error)
}

type archiveRepository struct {
	pool *pgxpool.Pool
}

// NewArchiveRepository builds repository.
func NewArchiveRepository(pool *pgxpool.Pool) ArchiveRepository {
	return &archiveRepository{pool: pool}
}

func (r *archiveRepository) Create(ctx context.Context, archived *domain.ArchivedData) error {
	stamp(&archived.ArchivedAt)
	const query = `
        INSERT INTO archived_data (table_name, data, archived_at)
        VALUES ($1,$2,$3)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		archived.TableName,
		archived.Data,
		archived.ArchivedAt,
	).Scan(&archived.ID)
	return translate(err)
}

func (r *archiveRepository) ListByTable(ctx context.Context, tableName string) ([]domain.ArchivedData, error) {
	const query = `
        SELECT id, table_name, data, archived_at
        FROM archived_data WHERE table_name=$1 ORDER BY archived_at ASC`
	rows, err := r.pool.Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ArchivedData, error) {
		var a domain.ArchivedData
		err := row.Scan(&a.ID, &a.TableName, &a.Data, &a.ArchivedAt)
		return a, err
	})
}
