package memory

import (
	"context"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type auditRepo struct {
	db *DB
}

func (r *auditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if entry.ID == "" {
		entry.ID = newID()
	}
	stamp(&entry.CreatedAt)
	r.db.audit = append(r.db.audit, *entry)
	return nil
}

func (r *auditRepo) ListByUser(_ context.Context, userID string) ([]domain.AuditLog, error) {
	return r.list(func(e domain.AuditLog) bool { return e.UserID == userID }, 0, false)
}

func (r *auditRepo) ListRecent(_ context.Context, n int) ([]domain.AuditLog, error) {
	return r.list(func(domain.AuditLog) bool { return true }, n, false)
}

func (r *auditRepo) ListCreatedBefore(_ context.Context, cutoff time.Time) ([]domain.AuditLog, error) {
	return r.list(func(e domain.AuditLog) bool { return e.CreatedAt.Before(cutoff) }, 0, true)
}

func (r *auditRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	before := len(r.db.audit)
	r.db.audit = removeWhere(r.db.audit, func(e domain.AuditLog) bool { return e.ID == id })
	if len(r.db.audit) == before {
		return repository.ErrNotFound
	}
	return nil
}

func (r *auditRepo) list(match func(domain.AuditLog) bool, n int, ascending bool) ([]domain.AuditLog, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var matched []domain.AuditLog
	for _, e := range r.db.audit {
		if match(e) {
			matched = append(matched, e)
		}
	}
	created := func(e domain.AuditLog) time.Time { return e.CreatedAt }
	if ascending {
		return oldestFirst(matched, created), nil
	}
	return limit(newestFirst(matched, created), n), nil
}

type loginRepo struct {
	db *DB
}

func (r *loginRepo) Create(_ context.Context, entry *domain.LoginHistory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if entry.ID == "" {
		entry.ID = newID()
	}
	stamp(&entry.CreatedAt)
	r.db.logins = append(r.db.logins, *entry)
	return nil
}

func (r *loginRepo) ListByUser(_ context.Context, userID string) ([]domain.LoginHistory, error) {
	return r.list(func(e domain.LoginHistory) bool { return e.UserID == userID }, 0, false)
}

func (r *loginRepo) ListRecent(_ context.Context, n int) ([]domain.LoginHistory, error) {
	return r.list(func(domain.LoginHistory) bool { return true }, n, false)
}

func (r *loginRepo) ListCreatedBefore(_ context.Context, cutoff time.Time) ([]domain.LoginHistory, error) {
	return r.list(func(e domain.LoginHistory) bool { return e.CreatedAt.Before(cutoff) }, 0, true)
}

func (r *loginRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	before := len(r.db.logins)
	r.db.logins = removeWhere(r.db.logins, func(e domain.LoginHistory) bool { return e.ID == id })
	if len(r.db.logins) == before {
		return repository.ErrNotFound
	}
	return nil
}

func (r *loginRepo) list(match func(domain.LoginHistory) bool, n int, ascending bool) ([]domain.LoginHistory, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var matched []domain.LoginHistory
	for _, e := range r.db.logins {
		if match(e) {
			matched = append(matched, e)
		}
	}
	created := func(e domain.LoginHistory) time.Time { return e.CreatedAt }
	if ascending {
		return oldestFirst(matched, created), nil
	}
	return limit(newestFirst(matched, created), n), nil
}

type statsRepo struct {
	db *DB
}

func (r *statsRepo) Create(_ context.Context, snapshot *domain.StatsSnapshot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if snapshot.ID == "" {
		snapshot.ID = newID()
	}
	stamp(&snapshot.Date)
	r.db.stats = append(r.db.stats, *snapshot)
	return nil
}

func (r *statsRepo) ListByUser(_ context.Context, userID string, from, to time.Time) ([]domain.StatsSnapshot, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var matched []domain.StatsSnapshot
	for _, s := range r.db.stats {
		if s.UserID == userID && !s.Date.Before(from) && !s.Date.After(to) {
			matched = append(matched, s)
		}
	}
	return oldestFirst(matched, func(s domain.StatsSnapshot) time.Time { return s.Date }), nil
}

type archiveRepo struct {
	db *DB
}

func (r *archiveRepo) Create(_ context.Context, archived *domain.ArchivedData) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if archived.ID == "" {
		archived.ID = newID()
	}
	stamp(&archived.ArchivedAt)
	stored := *archived
	stored.Data = append([]byte(nil), archived.Data...)
	r.db.archive = append(r.db.archive, stored)
	return nil
}

func (r *archiveRepo) ListByTable(_ context.Context, tableName string) ([]domain.ArchivedData, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var matched []domain.ArchivedData
	for _, a := range r.db.archive {
		if a.TableName == tableName {
			matched = append(matched, a)
		}
	}
	return matched, nil
}
