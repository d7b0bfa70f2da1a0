package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// DashboardHandler exposes dashboard statistics and the owner report.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Stats GET /api/dashboard/stats?from=&to=.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	from, err := parseTimeParam("from", c.Query("from"))
	if err != nil {
		return err
	}
	to, err := parseTimeParam("to", c.Query("to"))
	if err != nil {
		return err
	}
	stats, err := h.service.Compute(c.UserContext(), principal, from, to)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewDashboardResponse(stats)))
}

// Historical GET /api/dashboard/historical?from=&to=.
func (h *DashboardHandler) Historical(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	from, err := parseTimeParam("from", c.Query("from"))
	if err != nil {
		return err
	}
	to, err := parseTimeParam("to", c.Query("to"))
	if err != nil {
		return err
	}
	if from == nil || to == nil {
		return apperrors.NewValidationError("from and to are required", nil)
	}
	snapshots, err := h.service.Historical(c.UserContext(), principal, *from, *to)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewSnapshotResponses(snapshots)))
}

// SystemReport GET /api/system/reports.
func (h *DashboardHandler) SystemReport(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	report, err := h.service.SystemReport(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewSystemReportResponse(report)))
}
