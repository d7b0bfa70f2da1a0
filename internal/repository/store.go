package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRevocationStore remembers token ids revoked by logout until they
// would have expired anyway.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Store bundles every repository the services need.
type Store struct {
	Users    UserRepository
	Accounts AccountRepository
	Tickets  TicketRepository
	Notes    TicketNoteRepository
	Audit    AuditRepository
	Logins   LoginHistoryRepository
	Stats    StatsRepository
	Archive  ArchiveRepository
}

// NewPostgresStore wires the pgx-backed repositories on one pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Users:    NewUserRepository(pool),
		Accounts: NewAccountRepository(pool),
		Tickets:  NewTicketRepository(pool),
		Notes:    NewTicketNoteRepository(pool),
		Audit:    NewAuditRepository(pool),
		Logins:   NewLoginHistoryRepository(pool),
		Stats:    NewStatsRepository(pool),
		Archive:  NewArchiveRepository(pool),
	}
}
