package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// UsersHandler serves user profile and management endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// List GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	users, err := h.service.List(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserResponses(users)))
}

// ListByRole GET /api/users/role/:role.
func (h *UsersHandler) ListByRole(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	users, err := h.service.ListByRole(c.UserContext(), principal, domain.Role(strings.ToUpper(c.Params("role"))))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserResponses(users)))
}

// ListByBusinessType GET /api/users/business-type/:businessType.
func (h *UsersHandler) ListByBusinessType(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	bt := domain.BusinessType(strings.ToUpper(c.Params("businessType")))
	users, err := h.service.ListByBusinessType(c.UserContext(), principal, bt)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserResponses(users)))
}

// Get GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserResponse(user)))
}

// Me GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.UserContext(), principal, principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserResponse(user)))
}

// UpdateProfile PUT /api/users/:id.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateProfile(c.UserContext(), principal, c.Params("id"), req.Input())
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserResponse(user)))
}

// ChangeRole PATCH /api/users/:id/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	role := domain.Role(strings.ToUpper(req.Role))
	if !role.Valid() {
		return apperrors.NewValidationError("invalid role", map[string]any{"role": req.Role})
	}
	user, err := h.service.ChangeRole(c.UserContext(), principal, c.Params("id"), role)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserResponse(user)))
}

// UpdateBusinessType PATCH /api/users/:id/business-type.
func (h *UsersHandler) UpdateBusinessType(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.BusinessTypeRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateBusinessType(c.UserContext(), principal, c.Params("id"), domain.BusinessType(req.BusinessType))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewUserResponse(user)))
}

// Delete DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AuditLogs GET /api/users/:id/audit-logs.
func (h *UsersHandler) AuditLogs(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	logs, err := h.service.AuditLogs(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(data(logs))
}

// LoginHistory GET /api/users/:id/login-history.
func (h *UsersHandler) LoginHistory(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	history, err := h.service.LoginHistory(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(data(history))
}
