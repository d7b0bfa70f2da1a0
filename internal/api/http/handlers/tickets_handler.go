package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints for every role.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Create(c.UserContext(), principal, req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.NewTicketResponse(ticket)))
}

// Raise POST /api/it/tickets/raise.
func (h *TicketsHandler) Raise(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.RaiseTicketRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.RaiseForUser(c.UserContext(), principal, req.UserID, req.CreateTicketRequest.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.NewTicketResponse(ticket)))
}

// List GET /api/tickets?status=&priority=&category=&from=&to=.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	return h.list(c, principal, filter)
}

// FilterByDate GET /api/admin/tickets/filter?from=&to=. Both bounds required.
func (h *TicketsHandler) FilterByDate(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if c.Query("from") == "" || c.Query("to") == "" {
		return apperrors.NewValidationError("from and to are required", nil)
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	return h.list(c, principal, filter)
}

// ListByStatus GET /api/tickets/status/:status.
func (h *TicketsHandler) ListByStatus(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	status := domain.TicketStatus(strings.ToUpper(c.Params("status")))
	if !status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	return h.list(c, principal, service.TicketListFilter{Statuses: []domain.TicketStatus{status}})
}

// ListByPriority GET /api/tickets/priority/:priority.
func (h *TicketsHandler) ListByPriority(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	priority := domain.TicketPriority(strings.ToUpper(c.Params("priority")))
	if !priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	return h.list(c, principal, service.TicketListFilter{Priorities: []domain.TicketPriority{priority}})
}

// ListByCategory GET /api/tickets/category/:category.
func (h *TicketsHandler) ListByCategory(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	category := domain.TicketCategory(strings.ToUpper(c.Params("category")))
	if !category.Valid() {
		return apperrors.NewValidationError("invalid category", map[string]any{"category": category})
	}
	return h.list(c, principal, service.TicketListFilter{Categories: []domain.TicketCategory{category}})
}

func (h *TicketsHandler) list(c *fiber.Ctx, principal *auth.Principal, filter service.TicketListFilter) error {
	tickets, err := h.service.List(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponses(tickets)))
}

// ListMine GET /api/users/tickets.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListForOwner(c.UserContext(), principal, principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponses(tickets)))
}

// ListForUser GET /api/tickets/user/:userId.
func (h *TicketsHandler) ListForUser(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListForOwner(c.UserContext(), principal, c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponses(tickets)))
}

// ListAssigned GET /api/tickets/assigned.
func (h *TicketsHandler) ListAssigned(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListAssigned(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponses(tickets)))
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponse(ticket)))
}

// Status GET /api/users/tickets/:ticketId/status.
func (h *TicketsHandler) Status(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id := c.Params("ticketId")
	status, err := h.service.StatusForOwner(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.TicketStatusResponse{ID: id, Status: status}))
}

// UpdateStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), principal, c.Params("id"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponse(ticket)))
}

// Assign POST /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Assign(c.UserContext(), principal, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponse(ticket)))
}

// Close POST /api/tickets/:id/close and PUT /api/it/tickets/:ticketId/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Close(c.UserContext(), principal, ticketParam(c))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponse(ticket)))
}

// Reopen POST /api/tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Reopen(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponse(ticket)))
}

// AddNote POST /api/tickets/:id/notes and POST /api/it/tickets/:ticketId/notes.
func (h *TicketsHandler) AddNote(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.AddNoteRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	note, err := h.service.AddNote(c.UserContext(), principal, ticketParam(c), req.Note)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.NewNoteResponse(note)))
}

// ListNotes GET /api/tickets/:id/notes.
func (h *TicketsHandler) ListNotes(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	notes, err := h.service.ListNotes(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewNoteResponses(notes)))
}

// Delete DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func ticketParam(c *fiber.Ctx) string {
	if id := c.Params("ticketId"); id != "" {
		return id
	}
	return c.Params("id")
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{}
	for _, s := range splitList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(s))
	}
	for _, p := range splitList(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(p))
	}
	for _, cat := range splitList(c.Query("category")) {
		filter.Categories = append(filter.Categories, domain.TicketCategory(cat))
	}
	if assignee := c.Query("assignedTo"); assignee != "" {
		filter.AssigneeID = &assignee
	}
	from, err := parseTimeParam("from", c.Query("from"))
	if err != nil {
		return filter, err
	}
	to, err := parseTimeParam("to", c.Query("to"))
	if err != nil {
		return filter, err
	}
	filter.CreatedFrom = from
	filter.CreatedTo = to
	filter.Limit = c.QueryInt("limit", 0)
	filter.Offset = c.QueryInt("offset", 0)
	return filter, nil
}
