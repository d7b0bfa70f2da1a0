package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

var sweepNow = time.Date(2026, 9, 15, 3, 0, 0, 0, time.UTC)

type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Create(ctx context.Context, archived *domain.ArchivedData) error {
	return m.Called(ctx, archived).Error(0)
}

func (m *MockArchiveRepository) ListByTable(ctx context.Context, tableName string) ([]domain.ArchivedData, error) {
	args := m.Called(ctx, tableName)
	return args.Get(0).([]domain.ArchivedData), args.Error(1)
}

func newSweeper(store *repository.Store, archive repository.ArchiveRepository, metrics *observability.Metrics, dryRun bool) *Sweeper {
	return NewSweeper(SweeperDependencies{
		TicketRepo:  store.Tickets,
		NoteRepo:    store.Notes,
		AuditRepo:   store.Audit,
		LoginRepo:   store.Logins,
		ArchiveRepo: archive,
		Metrics:     metrics,
		Clock:       func() time.Time { return sweepNow },
		DryRun:      dryRun,
	})
}

type seeded struct {
	oldTicket, newTicket string
	oldAudit, oldLogin   string
}

func seedAged(t *testing.T, store *repository.Store) seeded {
	t.Helper()
	ctx := context.Background()
	user := &domain.User{Username: "alice", Email: "alice@example.com", Role: domain.RoleUser}
	require.NoError(t, store.Users.Create(ctx, user))

	old := &domain.Ticket{Title: "old printer", Category: domain.TicketCategoryHardware, Priority: domain.TicketPriorityMedium,
		Status: domain.TicketStatusClosed, UserID: user.ID, CreatedAt: sweepNow.AddDate(0, -7, 0)}
	fresh := &domain.Ticket{Title: "new vpn", Category: domain.TicketCategoryNetwork, Priority: domain.TicketPriorityMedium,
		Status: domain.TicketStatusPending, UserID: user.ID, CreatedAt: sweepNow.AddDate(0, -1, 0)}
	require.NoError(t, store.Tickets.Create(ctx, old))
	require.NoError(t, store.Tickets.Create(ctx, fresh))
	require.NoError(t, store.Notes.Create(ctx, &domain.TicketNote{TicketID: old.ID, Note: "toner replaced", AddedByID: user.ID, CreatedAt: old.CreatedAt}))

	oldAudit := &domain.AuditLog{Action: domain.AuditTicketClosed, Details: "closed", UserID: user.ID, CreatedAt: sweepNow.AddDate(0, -8, 0)}
	require.NoError(t, store.Audit.Create(ctx, oldAudit))
	require.NoError(t, store.Audit.Create(ctx, &domain.AuditLog{Action: domain.AuditUserLoggedIn, UserID: user.ID, CreatedAt: sweepNow.AddDate(0, 0, -2)}))

	oldLogin := &domain.LoginHistory{UserID: user.ID, IPAddress: "10.0.0.1", CreatedAt: sweepNow.AddDate(-1, 0, 0)}
	require.NoError(t, store.Logins.Create(ctx, oldLogin))

	return seeded{oldTicket: old.ID, newTicket: fresh.ID, oldAudit: oldAudit.ID, oldLogin: oldLogin.ID}
}

func TestSweeper_ArchivesAgedRows(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ids := seedAged(t, store)
	metrics := observability.NewMetrics()

	report := newSweeper(store, store.Archive, metrics, false).Run(ctx)
	require.False(t, report.Failed())
	assert.Equal(t, sweepNow.AddDate(0, -6, 0), report.Cutoff)
	assert.Equal(t, map[string]int{
		domain.ArchiveTableTicket:       1,
		domain.ArchiveTableAuditLog:     1,
		domain.ArchiveTableLoginHistory: 1,
	}, report.Archived)

	_, err := store.Tickets.GetByID(ctx, ids.oldTicket)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.Tickets.GetByID(ctx, ids.newTicket)
	assert.NoError(t, err)

	archived, err := store.Archive.ListByTable(ctx, domain.ArchiveTableTicket)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, sweepNow, archived[0].ArchivedAt)

	var blob struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Notes []struct {
			Note string `json:"note"`
		} `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(archived[0].Data, &blob))
	assert.Equal(t, ids.oldTicket, blob.ID)
	assert.Equal(t, "old printer", blob.Title)
	require.Len(t, blob.Notes, 1)
	assert.Equal(t, "toner replaced", blob.Notes[0].Note)

	remaining, err := store.Audit.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	assert.Equal(t, int64(1), metrics.Snapshot().Archived[domain.ArchiveTableTicket])
}

func TestSweeper_TableFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ids := seedAged(t, store)

	archive := new(MockArchiveRepository)
	archive.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.ArchivedData) bool {
		return a.TableName == domain.ArchiveTableAuditLog
	})).Return(errors.New("disk full"))
	archive.On("Create", mock.Anything, mock.Anything).Return(nil)

	report := newSweeper(store, archive, nil, false).Run(ctx)
	require.True(t, report.Failed())
	assert.Contains(t, report.Failures, domain.ArchiveTableAuditLog)
	assert.NotContains(t, report.Failures, domain.ArchiveTableTicket)
	assert.Equal(t, 1, report.Archived[domain.ArchiveTableTicket])
	assert.Equal(t, 1, report.Archived[domain.ArchiveTableLoginHistory])
	assert.Equal(t, 0, report.Archived[domain.ArchiveTableAuditLog])

	_, err := store.Tickets.GetByID(ctx, ids.oldTicket)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	auditRows, err := store.Audit.ListCreatedBefore(ctx, report.Cutoff)
	require.NoError(t, err)
	require.Len(t, auditRows, 1)
	assert.Equal(t, ids.oldAudit, auditRows[0].ID)
}

func TestSweeper_DryRunLeavesRows(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ids := seedAged(t, store)

	report := newSweeper(store, store.Archive, nil, true).Run(ctx)
	assert.Equal(t, 1, report.Archived[domain.ArchiveTableTicket])

	_, err := store.Tickets.GetByID(ctx, ids.oldTicket)
	assert.NoError(t, err)
	archived, err := store.Archive.ListByTable(ctx, domain.ArchiveTableTicket)
	require.NoError(t, err)
	assert.Empty(t, archived)
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	store := memory.NewStore()
	s := NewScheduler(newSweeper(store, store.Archive, nil, false), "every night", nil)
	assert.Error(t, s.Start())
}
