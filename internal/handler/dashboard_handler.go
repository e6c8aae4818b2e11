package handler

import (
	"github.com/gofiber/fiber/v2"

	"estampa-fina/internal/service"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetDashboardStats returns the month's revenue, the last seven days of
// sales and the user and product counters.
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}
