package handler

import (
	"github.com/gofiber/fiber/v2"

	"estampa-fina/internal/service"
)

type ActivityHandler struct {
	service service.ActivityService
}

func NewActivityHandler(s service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: s}
}

// GetActivity lists audit entries newest first
// GET /api/v1/activity?entity=product&limit=50
func (h *ActivityHandler) GetActivity(c *fiber.Ctx) error {
	logs, err := h.service.List(c.Query("entity"), c.QueryInt("limit"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(logs)
}
