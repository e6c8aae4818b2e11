package handler

import (
	"github.com/gofiber/fiber/v2"

	"estampa-fina/internal/service"
)

type SearchHandler struct {
	service service.SearchService
}

func NewSearchHandler(s service.SearchService) *SearchHandler {
	return &SearchHandler{service: s}
}

// Search matches product and user names by prefix
// GET /api/v1/search?q=&limit=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	result, err := h.service.Search(c.Query("q"), c.QueryInt("limit"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}
