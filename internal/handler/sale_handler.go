package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"estampa-fina/internal/model"
	"estampa-fina/internal/service"
)

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{service: s}
}

// GetSales lists orders newest first
// GET /api/v1/sales?search=&status=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	sales, err := h.service.GetAllSales(service.SaleFilter{
		Search: c.Query("search"),
		Status: model.OrderStatus(c.Query("status")),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sales)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	saleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.service.GetSale(saleID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sale)
}

// GetMyOrders returns the orders placed under the caller's own id
// GET /api/v1/me/orders
func (h *SaleHandler) GetMyOrders(c *fiber.Ctx) error {
	sales, err := h.service.GetSalesForClient(getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sales)
}

func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.SaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.CreateSale(getActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale created", "data": sale})
}

// CreateWalkInSale registers an in-store sale as already completed
// POST /api/v1/sales/walk-in
func (h *SaleHandler) CreateWalkInSale(c *fiber.Ctx) error {
	var req service.SaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.CreateWalkInSale(getActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale registered", "data": sale})
}

func (h *SaleHandler) UpdateSale(c *fiber.Ctx) error {
	saleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var req service.SaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.UpdateSale(getActor(c), saleID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale updated", "data": sale})
}

// UpdateStatus changes only the order status
// PUT /api/v1/sales/:id/status
func (h *SaleHandler) UpdateStatus(c *fiber.Ctx) error {
	saleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.UpdateStatus(getActor(c), saleID, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Status updated", "data": sale})
}
