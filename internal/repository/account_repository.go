package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AccountRepository stores SUPER_ADMIN subscription records.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByUserID(ctx context.Context, userID string) (*domain.Account, error)
	DeleteByUserID(ctx context.Context, userID string) error
	List(ctx context.Context) ([]domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository builds repository.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	stamp(&account.CreatedAt)
	const query = `
        INSERT INTO accounts (user_id, expiry_date, created_at)
        VALUES ($1, $2, $3)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		account.UserID,
		account.ExpiryDate,
		account.CreatedAt,
	).Scan(&account.ID)
	return translate(err)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	return affected(r.pool.Exec(ctx,
		`UPDATE accounts SET expiry_date=$1 WHERE user_id=$2`,
		account.ExpiryDate, account.UserID,
	))
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	var account domain.Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, expiry_date, created_at FROM accounts WHERE user_id=$1`, userID,
	).Scan(&account.ID, &account.UserID, &account.ExpiryDate, &account.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *accountRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM accounts WHERE user_id=$1`, userID))
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, expiry_date, created_at FROM accounts ORDER BY expiry_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.ExpiryDate, &account.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}
