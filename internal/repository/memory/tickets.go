package memory

import (
	"context"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type ticketRepo struct {
	db *DB
}

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = newID()
	}
	stamp(&ticket.CreatedAt)
	ticket.UpdatedAt = ticket.CreatedAt
	r.db.tickets = append(r.db.tickets, *ticket)
	return nil
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.tickets {
		if r.db.tickets[i].ID == ticket.ID {
			stored := *ticket
			stored.CreatedAt = r.db.tickets[i].CreatedAt
			stored.UserID = r.db.tickets[i].UserID
			r.db.tickets[i] = stored
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *ticketRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	before := len(r.db.tickets)
	r.db.tickets = removeWhere(r.db.tickets, func(t domain.Ticket) bool { return t.ID == id })
	if len(r.db.tickets) == before {
		return repository.ErrNotFound
	}
	r.db.notes = removeWhere(r.db.notes, func(n domain.TicketNote) bool { return n.TicketID == id })
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, t := range r.db.tickets {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ticketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var matched []domain.Ticket
	for _, t := range r.db.tickets {
		if matchTicket(t, filter) {
			matched = append(matched, t)
		}
	}
	sorted := newestFirst(matched, func(t domain.Ticket) time.Time { return t.CreatedAt })
	if filter.Offset > 0 {
		if filter.Offset >= len(sorted) {
			return nil, nil
		}
		sorted = sorted[filter.Offset:]
	}
	return limit(sorted, filter.Limit), nil
}

func matchTicket(t domain.Ticket, f repository.TicketFilter) bool {
	if f.OwnerID != nil && t.UserID != *f.OwnerID {
		return false
	}
	if f.AssigneeID != nil && !t.AssignedToUser(*f.AssigneeID) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, t.Priority) {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, t.Category) {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	if f.CreatedBefore != nil && !t.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	return true
}

func contains[T comparable](set []T, v T) bool {
	for _, candidate := range set {
		if candidate == v {
			return true
		}
	}
	return false
}

type noteRepo struct {
	db *DB
}

func (r *noteRepo) Create(_ context.Context, note *domain.TicketNote) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	found := false
	for _, t := range r.db.tickets {
		if t.ID == note.TicketID {
			found = true
			break
		}
	}
	if !found {
		return repository.ErrNotFound
	}
	if note.ID == "" {
		note.ID = newID()
	}
	stamp(&note.CreatedAt)
	r.db.notes = append(r.db.notes, *note)
	return nil
}

func (r *noteRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketNote, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var matched []domain.TicketNote
	for _, n := range r.db.notes {
		if n.TicketID == ticketID {
			matched = append(matched, n)
		}
	}
	return oldestFirst(matched, func(n domain.TicketNote) time.Time { return n.CreatedAt }), nil
}
