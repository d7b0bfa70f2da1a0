package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService drives the ticket lifecycle. Every mutation is a primary
// store write followed by a best-effort audit entry and an event.
type TicketService struct {
	tickets    repository.TicketRepository
	notes      repository.TicketNoteRepository
	users      repository.UserRepository
	audit      *AuditRecorder
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	NoteRepo   repository.TicketNoteRepository
	UserRepo   repository.UserRepository
	Audit      *AuditRecorder
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// TicketInput describes ticket creation payload.
type TicketInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
	IPAddress   *string
	DeviceName  *string
}

// TicketListFilter describes staff listing filters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Categories  []domain.TicketCategory
	AssigneeID  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		notes:      deps.NoteRepo,
		users:      deps.UserRepo,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clockOrDefault(deps.Clock),
	}
}

// Create files a ticket owned by the calling USER.
func (s *TicketService) Create(ctx context.Context, actor *auth.Principal, input TicketInput) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleUser); err != nil {
		return nil, err
	}
	ticket, err := s.newTicket(input, actor.UserID, nil)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.Record(ctx, actor.UserID, domain.AuditTicketCreated, fmt.Sprintf("Ticket %s created: %s", ticket.ID, ticket.Title))
	s.publishCreated(ctx, actor, ticket)
	return ticket, nil
}

// RaiseForUser lets an IT_PERSON file a ticket on behalf of targetUserID.
// The ticket is assigned to the IT_PERSON straight away.
func (s *TicketService) RaiseForUser(ctx context.Context, actor *auth.Principal, targetUserID string, input TicketInput) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleITPerson); err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, storeError(err, "user", map[string]any{"user_id": targetUserID})
	}
	ticket, err := s.newTicket(input, target.ID, strPtr(actor.UserID))
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.Record(ctx, actor.UserID, domain.AuditTicketCreated, fmt.Sprintf("IT Person created ticket %s for user %s", ticket.ID, target.Username))
	s.publishCreated(ctx, actor, ticket)
	return ticket, nil
}

func (s *TicketService) newTicket(input TicketInput, ownerID string, assignee *string) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": input.Category})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	now := s.now()
	return &domain.Ticket{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Priority:    priority,
		Status:      domain.TicketStatusPending,
		UserID:      ownerID,
		AssignedTo:  assignee,
		IPAddress:   input.IPAddress,
		DeviceName:  input.DeviceName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Get returns a ticket visible to actor. Tickets the caller may not see are
// reported as not found.
func (s *TicketService) Get(ctx context.Context, actor *auth.Principal, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, ticket) {
		return nil, ticketNotFound(ticketID)
	}
	return ticket, nil
}

// StatusForOwner returns the status of one of the caller's own tickets.
func (s *TicketService) StatusForOwner(ctx context.Context, actor *auth.Principal, ticketID string) (domain.TicketStatus, error) {
	if err := requireRole(actor, domain.RoleUser); err != nil {
		return "", err
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return "", err
	}
	if ticket.UserID != actor.UserID {
		return "", ticketNotFound(ticketID)
	}
	return ticket.Status, nil
}

// List returns tickets matching filter for staff callers.
func (s *TicketService) List(ctx context.Context, actor *auth.Principal, filter TicketListFilter) ([]domain.Ticket, error) {
	if err := requireRole(actor, auth.StaffRoles...); err != nil {
		return nil, err
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedTo.Before(*filter.CreatedFrom) {
		return nil, apperrors.NewValidationError("from must not be after to", nil)
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		AssigneeID:  filter.AssigneeID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		Categories:  filter.Categories,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return nonNilSlice(tickets), nil
}

// ListForOwner returns ownerID's tickets, newest first. Owners see their own;
// staff see anyone's.
func (s *TicketService) ListForOwner(ctx context.Context, actor *auth.Principal, ownerID string) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.UserID != ownerID && !auth.IsStaff(actor.Role) {
		return nil, apperrors.NewForbidden("access denied")
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return nonNilSlice(tickets), nil
}

// ListAssigned returns tickets assigned to the calling IT_PERSON.
func (s *TicketService) ListAssigned(ctx context.Context, actor *auth.Principal) ([]domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleITPerson); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{AssigneeID: &actor.UserID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return nonNilSlice(tickets), nil
}

// UpdateStatus sets status to one of the known values. closedAt is left as is.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *auth.Principal, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleITPerson); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{
			"status":  status,
			"allowed": domain.TicketStatuses,
		})
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	old := ticket.Status
	ticket.Status = status
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, domain.AuditTicketStatusUpdated, fmt.Sprintf("Ticket %s status %s -> %s", ticket.ID, old, status))
	s.publishStatusChanged(ctx, actor, ticket, old)
	return ticket, nil
}

// Close ends work on a ticket. An IT_PERSON may only close tickets assigned
// to them and marks them SOLVED; ADMIN and SUPER_ADMIN close any ticket as
// CLOSED.
func (s *TicketService) Close(ctx context.Context, actor *auth.Principal, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleITPerson, domain.RoleAdmin, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	target := domain.TicketStatusClosed
	if actor.Role == domain.RoleITPerson {
		if !ticket.AssignedToUser(actor.UserID) {
			return nil, ticketNotFound(ticketID)
		}
		target = domain.TicketStatusSolved
	}

	old := ticket.Status
	closedAt := s.now()
	ticket.Status = target
	ticket.ClosedAt = &closedAt
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, domain.AuditTicketClosed, fmt.Sprintf("Ticket %s closed as %s by %s", ticket.ID, target, actor.Role))
	s.publishStatusChanged(ctx, actor, ticket, old)
	return ticket, nil
}

// Reopen returns a ticket to OPEN and clears closedAt.
func (s *TicketService) Reopen(ctx context.Context, actor *auth.Principal, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleITPerson); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	old := ticket.Status
	ticket.Status = domain.TicketStatusOpen
	ticket.ClosedAt = nil
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, domain.AuditTicketReopened, fmt.Sprintf("Ticket %s reopened", ticket.ID))
	s.publishStatusChanged(ctx, actor, ticket, old)
	return ticket, nil
}

// AddNote appends a note. IT_PERSON callers must be the assignee; USER
// callers are refused.
func (s *TicketService) AddNote(ctx context.Context, actor *auth.Principal, ticketID, text string) (*domain.TicketNote, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleITPerson); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("note is required", nil)
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleITPerson && !ticket.AssignedToUser(actor.UserID) {
		return nil, ticketNotFound(ticketID)
	}

	note := &domain.TicketNote{
		TicketID:  ticket.ID,
		Note:      text,
		AddedByID: actor.UserID,
		CreatedAt: s.now(),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	s.audit.Record(ctx, actor.UserID, domain.AuditTicketNoteAdded, fmt.Sprintf("Note added to ticket %s", ticket.ID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketNoteAdded,
		TicketID: ticket.ID,
		OwnerID:  ticket.UserID,
		Actor:    actorOf(actor),
		Payload: events.TicketNoteAddedPayload{
			NoteID:      note.ID,
			NotePreview: preview(note.Note, 140),
		},
	})
	return note, nil
}

// ListNotes returns notes oldest first for callers who can see the ticket.
func (s *TicketService) ListNotes(ctx context.Context, actor *auth.Principal, ticketID string) ([]domain.TicketNote, error) {
	if _, err := s.Get(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if notes == nil {
		notes = []domain.TicketNote{}
	}
	return notes, nil
}

// Delete hard-deletes a ticket together with its notes.
func (s *TicketService) Delete(ctx context.Context, actor *auth.Principal, ticketID string) error {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleSuperAdmin); err != nil {
		return err
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	s.audit.Record(ctx, actor.UserID, domain.AuditTicketDeleted, fmt.Sprintf("Ticket %s deleted: %s", ticket.ID, ticket.Title))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		OwnerID:  ticket.UserID,
		Actor:    actorOf(actor),
	})
	return nil
}

func (s *TicketService) load(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

func (s *TicketService) save(ctx context.Context, ticket *domain.Ticket) error {
	ticket.UpdatedAt = s.now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return storeError(err, "ticket", map[string]any{"ticket_id": ticket.ID})
	}
	return nil
}

func (s *TicketService) publishCreated(ctx context.Context, actor *auth.Principal, ticket *domain.Ticket) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		OwnerID:  ticket.UserID,
		Actor:    actorOf(actor),
		Payload: events.TicketCreatedPayload{
			Title:      ticket.Title,
			Category:   ticket.Category,
			Priority:   ticket.Priority,
			AssignedTo: ticket.AssignedTo,
		},
	})
}

func (s *TicketService) publishStatusChanged(ctx context.Context, actor *auth.Principal, ticket *domain.Ticket, old domain.TicketStatus) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		OwnerID:  ticket.UserID,
		Actor:    actorOf(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: old,
			NewStatus: ticket.Status,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func canView(actor *auth.Principal, ticket *domain.Ticket) bool {
	return auth.IsStaff(actor.Role) || ticket.UserID == actor.UserID
}

func ticketNotFound(ticketID string) error {
	return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
}

func actorOf(p *auth.Principal) events.Actor {
	return events.Actor{UserID: p.UserID, Role: p.Role}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
