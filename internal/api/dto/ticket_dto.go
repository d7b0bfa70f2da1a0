package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Category    string  `json:"category" validate:"required,oneof=HARDWARE SOFTWARE NETWORK ACCESS OTHER"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	IPAddress   *string `json:"ipAddress" validate:"omitempty,ip"`
	DeviceName  *string `json:"deviceName" validate:"omitempty,max=100"`
}

// Input converts the payload for the ticket service.
func (r CreateTicketRequest) Input() service.TicketInput {
	return service.TicketInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.TicketCategory(r.Category),
		Priority:    domain.TicketPriority(r.Priority),
		IPAddress:   r.IPAddress,
		DeviceName:  r.DeviceName,
	}
}

// RaiseTicketRequest is filed by IT staff on behalf of a user.
type RaiseTicketRequest struct {
	CreateTicketRequest
	UserID string `json:"userId" validate:"required"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssignedTo string `json:"assignedTo" validate:"required"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Note string `json:"note" validate:"required,max=5000"`
}

// TicketResponse is the public shape of a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	UserID      string                `json:"userId"`
	AssignedTo  *string               `json:"assignedTo"`
	IPAddress   *string               `json:"ipAddress,omitempty"`
	DeviceName  *string               `json:"deviceName,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	ClosedAt    *time.Time            `json:"closedAt"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    t.Priority,
		Status:      t.Status,
		UserID:      t.UserID,
		AssignedTo:  t.AssignedTo,
		IPAddress:   t.IPAddress,
		DeviceName:  t.DeviceName,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		ClosedAt:    t.ClosedAt,
	}
}

// NewTicketResponses maps a list, never returning nil.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// TicketStatusResponse answers the owner's status lookup.
type TicketStatusResponse struct {
	ID     string              `json:"id"`
	Status domain.TicketStatus `json:"status"`
}

// NoteResponse is one ticket note.
type NoteResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	Note      string    `json:"note"`
	AddedByID string    `json:"addedById"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNoteResponse maps a note.
func NewNoteResponse(n *domain.TicketNote) NoteResponse {
	return NoteResponse{ID: n.ID, TicketID: n.TicketID, Note: n.Note, AddedByID: n.AddedByID, CreatedAt: n.CreatedAt}
}

// NewNoteResponses maps notes.
func NewNoteResponses(notes []domain.TicketNote) []NoteResponse {
	items := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		items = append(items, NewNoteResponse(&notes[i]))
	}
	return items
}
