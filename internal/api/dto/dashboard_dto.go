package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// DashboardResponse is the aggregate dashboard view.
type DashboardResponse struct {
	TotalTickets      int                           `json:"totalTickets"`
	OpenTickets       int                           `json:"openTickets"`
	ClosedTickets     int                           `json:"closedTickets"`
	TotalUsers        int                           `json:"totalUsers"`
	TicketsByPriority map[domain.TicketPriority]int `json:"ticketsByPriority"`
	TicketsByCategory map[domain.TicketCategory]int `json:"ticketsByCategory"`
	TicketsByStatus   map[domain.TicketStatus]int   `json:"ticketsByStatus"`
	RecentTickets     []TicketResponse              `json:"recentTickets"`
	RecentUsers       []UserResponse                `json:"recentUsers"`
}

// NewDashboardResponse maps computed stats.
func NewDashboardResponse(s *domain.DashboardStats) DashboardResponse {
	return DashboardResponse{
		TotalTickets:      s.TotalTickets,
		OpenTickets:       s.OpenTickets,
		ClosedTickets:     s.ClosedTickets,
		TotalUsers:        s.TotalUsers,
		TicketsByPriority: s.TicketsByPriority,
		TicketsByCategory: s.TicketsByCategory,
		TicketsByStatus:   s.TicketsByStatus,
		RecentTickets:     NewTicketResponses(s.RecentTickets),
		RecentUsers:       NewUserResponses(s.RecentUsers),
	}
}

// SnapshotResponse is one persisted dashboard snapshot.
type SnapshotResponse struct {
	Date          time.Time `json:"date"`
	TotalTickets  int       `json:"totalTickets"`
	OpenTickets   int       `json:"openTickets"`
	ClosedTickets int       `json:"closedTickets"`
	TotalUsers    int       `json:"totalUsers"`
}

// NewSnapshotResponses maps snapshots.
func NewSnapshotResponses(snapshots []domain.StatsSnapshot) []SnapshotResponse {
	items := make([]SnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		items = append(items, SnapshotResponse{
			Date:          s.Date,
			TotalTickets:  s.TotalTickets,
			OpenTickets:   s.OpenTickets,
			ClosedTickets: s.ClosedTickets,
			TotalUsers:    s.TotalUsers,
		})
	}
	return items
}

// SuperAdminAccountResponse lists a tenant and its expiry.
type SuperAdminAccountResponse struct {
	UserID       string               `json:"userId"`
	Username     string               `json:"username"`
	Email        string               `json:"email"`
	Role         domain.Role          `json:"role"`
	BusinessType *domain.BusinessType `json:"businessType"`
	ExpiryDate   time.Time            `json:"expiryDate"`
	Expired      bool                 `json:"expired"`
}

// SystemReportResponse is the SYSTEM_OWNER overview.
type SystemReportResponse struct {
	SuperAdminsByBusinessType map[domain.BusinessType]int `json:"superAdminsByBusinessType"`
	TicketsByStatus           map[domain.TicketStatus]int `json:"ticketsByStatus"`
	RecentAuditLogs           []domain.AuditLog           `json:"recentAuditLogs"`
	RecentLogins              []domain.LoginHistory       `json:"recentLogins"`
	Accounts                  []SuperAdminAccountResponse `json:"accounts"`
}

// NewSystemReportResponse maps the report.
func NewSystemReportResponse(r *service.SystemReport) SystemReportResponse {
	accounts := make([]SuperAdminAccountResponse, 0, len(r.Accounts))
	for _, a := range r.Accounts {
		accounts = append(accounts, SuperAdminAccountResponse{
			UserID:       a.UserID,
			Username:     a.Username,
			Email:        a.Email,
			Role:         a.Role,
			BusinessType: a.BusinessType,
			ExpiryDate:   a.ExpiryDate,
			Expired:      a.Expired,
		})
	}
	return SystemReportResponse{
		SuperAdminsByBusinessType: r.SuperAdminsByBusinessType,
		TicketsByStatus:           r.TicketsByStatus,
		RecentAuditLogs:           r.RecentAuditLogs,
		RecentLogins:              r.RecentLogins,
		Accounts:                  accounts,
	}
}
