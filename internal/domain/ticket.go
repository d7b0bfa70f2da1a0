package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending TicketStatus = "PENDING"
	TicketStatusOpen    TicketStatus = "OPEN"
	TicketStatusSolved  TicketStatus = "SOLVED"
	TicketStatusClosed  TicketStatus = "CLOSED"
)

// TicketStatuses lists the accepted statuses.
var TicketStatuses = []TicketStatus{TicketStatusPending, TicketStatusOpen, TicketStatusSolved, TicketStatusClosed}

// Valid reports whether s is one of the accepted statuses.
func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the ticket is finished.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusSolved || s == TicketStatusClosed
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketPriorities lists every priority, lowest first.
var TicketPriorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent}

func (p TicketPriority) Valid() bool {
	for _, known := range TicketPriorities {
		if p == known {
			return true
		}
	}
	return false
}

// TicketCategory classifies the problem area.
type TicketCategory string

const (
	TicketCategoryHardware TicketCategory = "HARDWARE"
	TicketCategorySoftware TicketCategory = "SOFTWARE"
	TicketCategoryNetwork  TicketCategory = "NETWORK"
	TicketCategoryAccess   TicketCategory = "ACCESS"
	TicketCategoryOther    TicketCategory = "OTHER"
)

// TicketCategories lists every category.
var TicketCategories = []TicketCategory{
	TicketCategoryHardware,
	TicketCategorySoftware,
	TicketCategoryNetwork,
	TicketCategoryAccess,
	TicketCategoryOther,
}

func (c TicketCategory) Valid() bool {
	for _, known := range TicketCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    TicketCategory `json:"category"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	UserID      string         `json:"userId"`
	AssignedTo  *string        `json:"assignedTo"`
	IPAddress   *string        `json:"ipAddress"`
	DeviceName  *string        `json:"deviceName"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	ClosedAt    *time.Time     `json:"closedAt"`
}

// AssignedToUser reports whether the ticket is assigned to userID.
func (t *Ticket) AssignedToUser(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// TicketNote is an append-only annotation on a ticket.
type TicketNote struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	Note      string    `json:"note"`
	AddedByID string    `json:"addedById"`
	CreatedAt time.Time `json:"createdAt"`
}
