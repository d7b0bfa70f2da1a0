package domain

import "time"

// DashboardStats is the aggregate view returned to dashboard callers.
type DashboardStats struct {
	TotalTickets      int
	OpenTickets       int
	ClosedTickets     int
	TotalUsers        int
	TicketsByPriority map[TicketPriority]int
	TicketsByCategory map[TicketCategory]int
	TicketsByStatus   map[TicketStatus]int
	RecentTickets     []Ticket
	RecentUsers       []User
}

// StatsSnapshot is a persisted point-in-time copy of the headline counts.
type StatsSnapshot struct {
	ID            string
	UserID        string
	Date          time.Time
	TotalTickets  int
	OpenTickets   int
	ClosedTickets int
	TotalUsers    int
}

// ArchivedData wraps a serialized copy of an aged-out row.
type ArchivedData struct {
	ID         string
	TableName  string
	Data       []byte
	ArchivedAt time.Time
}

// Source tables recognised by the retention sweep.
const (
	ArchiveTableTicket       = "Ticket"
	ArchiveTableAuditLog     = "AuditLog"
	ArchiveTableLoginHistory = "LoginHistory"
)
