// Package memory provides goroutine-safe in-process implementations of the
// repository interfaces. It backs the test suites and runs the API when no
// Postgres DSN is configured.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// DB holds every table in insertion order.
type DB struct {
	mu       sync.RWMutex
	users    []domain.User
	accounts []domain.Account
	tickets  []domain.Ticket
	notes    []domain.TicketNote
	audit    []domain.AuditLog
	logins   []domain.LoginHistory
	stats    []domain.StatsSnapshot
	archive  []domain.ArchivedData
}

// NewDB returns an empty database.
func NewDB() *DB {
	return &DB{}
}

// NewStore wires memory repositories over a fresh database.
func NewStore() *repository.Store {
	return NewDB().Store()
}

// Store exposes db through the repository interfaces.
func (db *DB) Store() *repository.Store {
	return &repository.Store{
		Users:    &userRepo{db: db},
		Accounts: &accountRepo{db: db},
		Tickets:  &ticketRepo{db: db},
		Notes:    &noteRepo{db: db},
		Audit:    &auditRepo{db: db},
		Logins:   &loginRepo{db: db},
		Stats:    &statsRepo{db: db},
		Archive:  &archiveRepo{db: db},
	}
}

func newID() string {
	return uuid.NewString()
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

// newestFirst copies items in reverse insertion order and stably sorts by
// created time descending, so ties favour the latest insert.
func newestFirst[T any](items []T, created func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return created(out[j]).Before(created(out[i]))
	})
	return out
}

func oldestFirst[T any](items []T, created func(T) time.Time) []T {
	out := append([]T(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return created(out[i]).Before(created(out[j]))
	})
	return out
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func removeWhere[T any](items []T, drop func(T) bool) []T {
	kept := items[:0]
	for _, item := range items {
		if !drop(item) {
			kept = append(kept, item)
		}
	}
	return kept
}
