package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"estampa-fina/internal/service"
)

type QuoteHandler struct {
	service service.QuoteService
}

func NewQuoteHandler(s service.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: s}
}

func (h *QuoteHandler) GetQuotes(c *fiber.Ctx) error {
	quotes, err := h.service.GetAllQuotes()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(quotes)
}

func (h *QuoteHandler) GetQuote(c *fiber.Ctx) error {
	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid quote ID"})
	}

	quote, err := h.service.GetQuote(quoteID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(quote)
}

func (h *QuoteHandler) CreateQuote(c *fiber.Ctx) error {
	var req service.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	quote, err := h.service.CreateQuote(getActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Quote created", "data": quote})
}

func (h *QuoteHandler) UpdateQuote(c *fiber.Ctx) error {
	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid quote ID"})
	}

	var req service.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	quote, err := h.service.UpdateQuote(getActor(c), quoteID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Quote updated", "data": quote})
}

func (h *QuoteHandler) DeleteQuote(c *fiber.Ctx) error {
	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid quote ID"})
	}

	if err := h.service.DeleteQuote(getActor(c), quoteID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Quote deleted"})
}

// DownloadPDF renders the quote as a PDF attachment
// GET /api/v1/quotes/:id/pdf
func (h *QuoteHandler) DownloadPDF(c *fiber.Ctx) error {
	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid quote ID"})
	}

	pdf, filename, err := h.service.RenderPDF(quoteID)
	if err != nil {
		return fail(c, err)
	}

	c.Attachment(filename)
	return c.Send(pdf)
}
