package handler

import (
	"github.com/gofiber/fiber/v2"

	"estampa-fina/internal/model"
	"estampa-fina/internal/service"
)

type SettingsHandler struct {
	service service.SettingsService
}

func NewSettingsHandler(s service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: s}
}

// GET /api/v1/settings
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.service.Get()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(settings)
}

// UpdateSettings merges the supplied fields over the stored settings
// PUT /api/v1/settings
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var patch model.SettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	settings, err := h.service.Update(getActor(c), &patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Settings updated", "data": settings})
}

// UploadAsset stores the logo or favicon
// POST /api/v1/settings/:kind (kind is logo or favicon)
func (h *SettingsHandler) UploadAsset(c *fiber.Ctx) error {
	file, closer, err := formFile(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	defer closer.Close()

	settings, err := h.service.UploadAsset(c.UserContext(), getActor(c), c.Params("kind"), file)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Asset uploaded", "data": settings})
}
