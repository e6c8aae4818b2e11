package handler

import (
	"github.com/gofiber/fiber/v2"

	"estampa-fina/internal/service"
)

type NotificationHandler struct {
	service service.NotificationService
	alerts  service.AlertService
}

func NewNotificationHandler(s service.NotificationService, alerts service.AlertService) *NotificationHandler {
	return &NotificationHandler{service: s, alerts: alerts}
}

// GetFeed returns the latest notifications and the unread count
// GET /api/v1/notifications
func (h *NotificationHandler) GetFeed(c *fiber.Ctx) error {
	feed, err := h.service.Feed()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(feed)
}

// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.service.MarkRead(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	updated, err := h.service.MarkAllRead()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notifications marked as read", "updated": updated})
}

// GetAlerts runs a scan now and returns the current alerts ordered by severity
// GET /api/v1/alerts
func (h *NotificationHandler) GetAlerts(c *fiber.Ctx) error {
	alerts, err := h.alerts.Generate(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(alerts)
}
