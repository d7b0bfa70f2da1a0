package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AccountsHandler serves the role-scoped account routes of the admin,
// superadmin, it and system groups.
type AccountsHandler struct {
	service *service.UserService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(userService *service.UserService) *AccountsHandler {
	return &AccountsHandler{service: userService}
}

// CreateAs returns a handler creating accounts with a fixed role.
func (h *AccountsHandler) CreateAs(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.CreateUserRequest
		if err := dto.Bind(c, &req); err != nil {
			return err
		}
		return h.create(c, req.Input(role))
	}
}

// CreateScoped creates an account whose role is named in the body.
func (h *AccountsHandler) CreateScoped(c *fiber.Ctx) error {
	var req dto.ScopedCreateUserRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	role := domain.Role(strings.ToUpper(req.Role))
	if !role.Valid() {
		return apperrors.NewValidationError("invalid role", map[string]any{"role": req.Role})
	}
	return h.create(c, req.CreateUserRequest.Input(role))
}

func (h *AccountsHandler) create(c *fiber.Ctx, input service.CreateUserInput) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	user, err := h.service.CreateUser(c.UserContext(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.NewUserResponse(user)))
}

// DeleteOf returns a handler that deletes only accounts holding one of roles.
func (h *AccountsHandler) DeleteOf(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := principalFrom(c)
		if err != nil {
			return err
		}
		if err := h.service.DeleteUser(c.UserContext(), principal, c.Params("id"), roles...); err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	}
}

// ListUnder returns the accounts below the caller grouped by role.
func (h *AccountsHandler) ListUnder(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	grouped, err := h.service.ListUnder(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewGroupedUsersResponse(grouped)))
}

// UpdateExpiry PUT /api/system/superadmin/:id/expiry.
func (h *AccountsHandler) UpdateExpiry(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.ExpiryRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	account, err := h.service.UpdateSuperAdminExpiry(c.UserContext(), principal, c.Params("id"), req.ExpiryDate)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewAccountResponse(account)))
}
