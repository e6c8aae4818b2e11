package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"estampa-fina/internal/model"
	"estampa-fina/internal/service"
	"estampa-fina/internal/tier"
)

type ClientHandler struct {
	service service.ClientService
}

func NewClientHandler(s service.ClientService) *ClientHandler {
	return &ClientHandler{service: s}
}

// GetClients lists clients with their tier
// GET /api/v1/clients?search=&tier=
func (h *ClientHandler) GetClients(c *fiber.Ctx) error {
	clients, err := h.service.List(service.ClientFilter{
		Search: c.Query("search"),
		Tier:   tier.Tier(c.Query("tier")),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(clients)
}

func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	clientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	client, err := h.service.Get(clientID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(client)
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var client model.Client
	if err := c.BodyParser(&client); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	created, err := h.service.Create(getActor(c), &client)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Client created", "data": created})
}

func (h *ClientHandler) UpdateClient(c *fiber.Ctx) error {
	clientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	var client model.Client
	if err := c.BodyParser(&client); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.Update(getActor(c), clientID, &client)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Client updated", "data": updated})
}

func (h *ClientHandler) DeleteClient(c *fiber.Ctx) error {
	clientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	if err := h.service.Delete(getActor(c), clientID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Client deleted"})
}

// GetHistory returns the client's orders, newest first
// GET /api/v1/clients/:id/orders
func (h *ClientHandler) GetHistory(c *fiber.Ctx) error {
	clientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid client ID"})
	}

	orders, err := h.service.History(clientID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// LookupPostalCode pre-fills an address from a CEP
// GET /api/v1/postal-codes/:cep
func (h *ClientHandler) LookupPostalCode(c *fiber.Ctx) error {
	address, err := h.service.LookupPostalCode(c.UserContext(), c.Params("cep"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(address)
}
