package handler

import (
	"github.com/gofiber/fiber/v2"

	"estampa-fina/internal/permission"
)

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

type roleTemplate struct {
	Role        permission.Role                  `json:"role"`
	Permissions map[permission.Capability]bool `json:"permissions"`
}

// GetRoles returns every role with its default capability template
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles := make([]roleTemplate, 0, len(permission.Roles))
	for _, r := range permission.Roles {
		roles = append(roles, roleTemplate{Role: r, Permissions: permission.Template(r)})
	}
	return c.JSON(roles)
}

// GetCapabilities returns the capability catalogue for permission editors
// GET /api/v1/roles/capabilities
func (h *RoleHandler) GetCapabilities(c *fiber.Ctx) error {
	return c.JSON(permission.Catalogue)
}
