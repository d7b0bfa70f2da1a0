package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// DefaultHorizonMonths is the age past which rows leave the live tables.
const DefaultHorizonMonths = 6

// Sweeper moves aged tickets, audit entries and logins into ArchivedData.
// Runs must not overlap; nothing here prevents two concurrent sweeps from
// archiving the same row twice.
type Sweeper struct {
	tickets repository.TicketRepository
	notes   repository.TicketNoteRepository
	audit   repository.AuditRepository
	logins  repository.LoginHistoryRepository
	archive repository.ArchiveRepository
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
	horizon int
	dryRun  bool
}

// SweeperDependencies wires the sweeper.
type SweeperDependencies struct {
	TicketRepo    repository.TicketRepository
	NoteRepo      repository.TicketNoteRepository
	AuditRepo     repository.AuditRepository
	LoginRepo     repository.LoginHistoryRepository
	ArchiveRepo   repository.ArchiveRepository
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	Clock         func() time.Time
	HorizonMonths int
	// DryRun counts eligible rows without archiving or deleting them.
	DryRun bool
}

// SweepReport summarises one run. A table listed in Failures may still have
// a partial count in Archived.
type SweepReport struct {
	Cutoff   time.Time
	Archived map[string]int
	Failures map[string]error
}

// Failed reports whether any table pass failed.
func (r SweepReport) Failed() bool {
	return len(r.Failures) > 0
}

// NewSweeper builds a sweeper.
func NewSweeper(deps SweeperDependencies) *Sweeper {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	horizon := deps.HorizonMonths
	if horizon <= 0 {
		horizon = DefaultHorizonMonths
	}
	return &Sweeper{
		tickets: deps.TicketRepo,
		notes:   deps.NoteRepo,
		audit:   deps.AuditRepo,
		logins:  deps.LoginRepo,
		archive: deps.ArchiveRepo,
		metrics: deps.Metrics,
		logger:  logger,
		now:     now,
		horizon: horizon,
		dryRun:  deps.DryRun,
	}
}

// archivedTicket is the blob stored for a ticket: the row plus its notes.
type archivedTicket struct {
	domain.Ticket
	Notes []domain.TicketNote `json:"notes"`
}

// Run archives every row created strictly before now minus the horizon.
// Each table is an independent pass.
func (s *Sweeper) Run(ctx context.Context) SweepReport {
	cutoff := s.now().AddDate(0, -s.horizon, 0)
	report := SweepReport{
		Cutoff:   cutoff,
		Archived: map[string]int{},
		Failures: map[string]error{},
	}

	passes := []struct {
		table string
		run   func(context.Context, time.Time) (int, error)
	}{
		{domain.ArchiveTableTicket, s.sweepTickets},
		{domain.ArchiveTableAuditLog, s.sweepAuditLogs},
		{domain.ArchiveTableLoginHistory, s.sweepLogins},
	}
	for _, pass := range passes {
		n, err := pass.run(ctx, cutoff)
		report.Archived[pass.table] = n
		if !s.dryRun {
			s.metrics.RecordArchived(pass.table, n)
		}
		if err != nil {
			report.Failures[pass.table] = err
			s.logger.Error("retention pass failed",
				zap.String("table", pass.table),
				zap.Int("archived", n),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("retention pass completed",
			zap.String("table", pass.table),
			zap.Int("archived", n),
			zap.Bool("dry_run", s.dryRun),
		)
	}
	return report
}

func (s *Sweeper) sweepTickets(ctx context.Context, cutoff time.Time) (int, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{CreatedBefore: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("list tickets: %w", err)
	}
	if s.dryRun {
		return len(tickets), nil
	}
	done := 0
	for _, ticket := range tickets {
		notes, err := s.notes.ListByTicket(ctx, ticket.ID)
		if err != nil {
			return done, fmt.Errorf("list notes of %s: %w", ticket.ID, err)
		}
		if notes == nil {
			notes = []domain.TicketNote{}
		}
		if err := s.store(ctx, domain.ArchiveTableTicket, archivedTicket{Ticket: ticket, Notes: notes}); err != nil {
			return done, err
		}
		if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
			return done, fmt.Errorf("delete ticket %s: %w", ticket.ID, err)
		}
		done++
	}
	return done, nil
}

func (s *Sweeper) sweepAuditLogs(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := s.audit.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list audit logs: %w", err)
	}
	if s.dryRun {
		return len(entries), nil
	}
	done := 0
	for _, entry := range entries {
		if err := s.store(ctx, domain.ArchiveTableAuditLog, entry); err != nil {
			return done, err
		}
		if err := s.audit.Delete(ctx, entry.ID); err != nil {
			return done, fmt.Errorf("delete audit log %s: %w", entry.ID, err)
		}
		done++
	}
	return done, nil
}

func (s *Sweeper) sweepLogins(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := s.logins.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list login history: %w", err)
	}
	if s.dryRun {
		return len(entries), nil
	}
	done := 0
	for _, entry := range entries {
		if err := s.store(ctx, domain.ArchiveTableLoginHistory, entry); err != nil {
			return done, err
		}
		if err := s.logins.Delete(ctx, entry.ID); err != nil {
			return done, fmt.Errorf("delete login %s: %w", entry.ID, err)
		}
		done++
	}
	return done, nil
}

func (s *Sweeper) store(ctx context.Context, table string, row any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode %s row: %w", table, err)
	}
	archived := &domain.ArchivedData{
		TableName:  table,
		Data:       data,
		ArchivedAt: s.now(),
	}
	if err := s.archive.Create(ctx, archived); err != nil {
		return fmt.Errorf("archive %s row: %w", table, err)
	}
	return nil
}
