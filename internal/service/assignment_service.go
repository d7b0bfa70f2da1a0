package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Assign hands a ticket to an IT_PERSON. A PENDING ticket becomes OPEN on
// assignment; other statuses are kept.
func (s *TicketService) Assign(ctx context.Context, actor *auth.Principal, ticketID, assigneeID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleITPerson); err != nil {
		return nil, err
	}
	if assigneeID == "" {
		return nil, apperrors.NewValidationError("assignedTo is required", nil)
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, storeError(err, "assignee", map[string]any{"user_id": assigneeID})
	}
	if assignee.Role != domain.RoleITPerson {
		return nil, apperrors.NewValidationError("tickets can only be assigned to IT staff", map[string]any{
			"user_id": assigneeID,
			"role":    assignee.Role,
		})
	}

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	old := ticket.Status
	ticket.AssignedTo = strPtr(assignee.ID)
	if ticket.Status == domain.TicketStatusPending {
		ticket.Status = domain.TicketStatusOpen
	}
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, domain.AuditTicketAssigned, fmt.Sprintf("Ticket %s assigned to %s", ticket.ID, assignee.Username))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		OwnerID:  ticket.UserID,
		Actor:    actorOf(actor),
		Payload:  events.TicketAssignedPayload{AssigneeID: assignee.ID},
	})
	if old != ticket.Status {
		s.publishStatusChanged(ctx, actor, ticket, old)
	}
	return ticket, nil
}
