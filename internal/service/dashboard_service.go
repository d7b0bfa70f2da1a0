package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	recentItems       = 5
	reportRecentItems = 10
)

// DashboardService computes aggregate views over tickets and users.
type DashboardService struct {
	tickets  repository.TicketRepository
	users    repository.UserRepository
	accounts repository.AccountRepository
	stats    repository.StatsRepository
	audit    repository.AuditRepository
	logins   repository.LoginHistoryRepository
	logger   *zap.Logger
	now      Clock
}

// DashboardDependencies encapsulates repositories read by the dashboard.
type DashboardDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	AccountRepo repository.AccountRepository
	StatsRepo   repository.StatsRepository
	AuditRepo   repository.AuditRepository
	LoginRepo   repository.LoginHistoryRepository
	Logger      *zap.Logger
	Clock       Clock
}

// SuperAdminAccount pairs a SUPER_ADMIN with its expiry.
type SuperAdminAccount struct {
	UserID       string
	Username     string
	Email        string
	Role         domain.Role
	BusinessType *domain.BusinessType
	ExpiryDate   time.Time
	Expired      bool
}

// SystemReport is the SYSTEM_OWNER overview.
type SystemReport struct {
	SuperAdminsByBusinessType map[domain.BusinessType]int
	TicketsByStatus           map[domain.TicketStatus]int
	RecentAuditLogs           []domain.AuditLog
	RecentLogins              []domain.LoginHistory
	Accounts                  []SuperAdminAccount
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		tickets:  deps.TicketRepo,
		users:    deps.UserRepo,
		accounts: deps.AccountRepo,
		stats:    deps.StatsRepo,
		audit:    deps.AuditRepo,
		logins:   deps.LoginRepo,
		logger:   logger,
		now:      clockOrDefault(deps.Clock),
	}
}

// Compute aggregates tickets created within [from, to] and the users the
// actor may see. Every call persists a snapshot attributed to the actor.
func (s *DashboardService) Compute(ctx context.Context, actor *auth.Principal, from, to *time.Time) (*domain.DashboardStats, error) {
	if err := requireRole(actor, auth.ActiveRoles...); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, apperrors.NewValidationError("from must not be after to", nil)
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{CreatedFrom: from, CreatedTo: to})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	users, err := s.users.List(ctx, repository.UserFilter{Roles: auth.VisibleRoles(actor.Role)})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := aggregate(tickets, users)

	snapshot := &domain.StatsSnapshot{
		UserID:        actor.UserID,
		Date:          s.now(),
		TotalTickets:  stats.TotalTickets,
		OpenTickets:   stats.OpenTickets,
		ClosedTickets: stats.ClosedTickets,
		TotalUsers:    stats.TotalUsers,
	}
	if err := s.stats.Create(ctx, snapshot); err != nil {
		s.logger.Warn("dashboard snapshot write failed", zap.String("user_id", actor.UserID), zap.Error(err))
	}
	return stats, nil
}

// aggregate expects tickets and users ordered newest first.
func aggregate(tickets []domain.Ticket, users []domain.User) *domain.DashboardStats {
	stats := &domain.DashboardStats{
		TotalTickets:      len(tickets),
		TotalUsers:        len(users),
		TicketsByPriority: make(map[domain.TicketPriority]int, len(domain.TicketPriorities)),
		TicketsByCategory: make(map[domain.TicketCategory]int, len(domain.TicketCategories)),
		TicketsByStatus:   make(map[domain.TicketStatus]int, len(domain.TicketStatuses)),
	}
	for _, p := range domain.TicketPriorities {
		stats.TicketsByPriority[p] = 0
	}
	for _, c := range domain.TicketCategories {
		stats.TicketsByCategory[c] = 0
	}
	for _, st := range domain.TicketStatuses {
		stats.TicketsByStatus[st] = 0
	}

	for _, t := range tickets {
		stats.TicketsByPriority[t.Priority]++
		stats.TicketsByCategory[t.Category]++
		stats.TicketsByStatus[t.Status]++
		switch t.Status {
		case domain.TicketStatusPending, domain.TicketStatusOpen:
			stats.OpenTickets++
		case domain.TicketStatusSolved, domain.TicketStatusClosed:
			stats.ClosedTickets++
		}
	}

	stats.RecentTickets = append([]domain.Ticket{}, tickets[:min(recentItems, len(tickets))]...)
	stats.RecentUsers = append([]domain.User{}, users[:min(recentItems, len(users))]...)
	return stats
}

// Historical returns the actor's own snapshots within [from, to], oldest first.
func (s *DashboardService) Historical(ctx context.Context, actor *auth.Principal, from, to time.Time) ([]domain.StatsSnapshot, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if from.IsZero() || to.IsZero() {
		return nil, apperrors.NewValidationError("from and to are required", nil)
	}
	if from.After(to) {
		return nil, apperrors.NewValidationError("from must not be after to", nil)
	}
	snapshots, err := s.stats.ListByUser(ctx, actor.UserID, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if snapshots == nil {
		snapshots = []domain.StatsSnapshot{}
	}
	return snapshots, nil
}

// SystemReport summarises tenants and recent activity for the SYSTEM_OWNER.
func (s *DashboardService) SystemReport(ctx context.Context, actor *auth.Principal) (*SystemReport, error) {
	if err := requireRole(actor, domain.RoleSystemOwner); err != nil {
		return nil, err
	}

	admins, err := s.users.List(ctx, repository.UserFilter{Roles: []domain.Role{domain.RoleSuperAdmin, domain.RoleExpired}})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	recentAudit, err := s.audit.ListRecent(ctx, reportRecentItems)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	recentLogins, err := s.logins.ListRecent(ctx, reportRecentItems)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	report := &SystemReport{
		SuperAdminsByBusinessType: make(map[domain.BusinessType]int, len(domain.TicketLimits)),
		TicketsByStatus:           make(map[domain.TicketStatus]int, len(domain.TicketStatuses)),
		RecentAuditLogs:           nonNilSlice(recentAudit),
		RecentLogins:              nonNilSlice(recentLogins),
		Accounts:                  []SuperAdminAccount{},
	}
	for bt := range domain.TicketLimits {
		report.SuperAdminsByBusinessType[bt] = 0
	}
	for _, st := range domain.TicketStatuses {
		report.TicketsByStatus[st] = 0
	}

	byID := make(map[string]domain.User, len(admins))
	for _, u := range admins {
		byID[u.ID] = u
		if u.Role == domain.RoleSuperAdmin && u.BusinessType != nil {
			report.SuperAdminsByBusinessType[*u.BusinessType]++
		}
	}
	for _, t := range tickets {
		report.TicketsByStatus[t.Status]++
	}

	now := s.now()
	for _, acc := range accounts {
		u, ok := byID[acc.UserID]
		if !ok {
			continue
		}
		report.Accounts = append(report.Accounts, SuperAdminAccount{
			UserID:       u.ID,
			Username:     u.Username,
			Email:        u.Email,
			Role:         u.Role,
			BusinessType: u.BusinessType,
			ExpiryDate:   acc.ExpiryDate,
			Expired:      acc.Expired(now),
		})
	}
	return report, nil
}
