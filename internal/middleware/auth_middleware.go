package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/service"
)

// Locals keys set by RequireAuth.
const (
	LocalUserID      = "user_id"
	LocalUserEmail   = "user_email"
	LocalUserName    = "user_name"
	LocalUserRole    = "user_role"
	LocalCurrentUser = "current_user"
)

// RequireAuth validates the bearer token (or the token query parameter used by
// websocket clients) and stores the current user record in the context.
func RequireAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Query("token")

		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
			}
			tokenString = parts[1]
		}

		if tokenString == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		user, err := authService.ValidateToken(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals(LocalUserID, user.ID.String())
		c.Locals(LocalUserEmail, user.Email)
		c.Locals(LocalUserName, user.Name)
		c.Locals(LocalUserRole, string(user.Role))
		c.Locals(LocalCurrentUser, user)

		return c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(LocalCurrentUser).(*model.User)
	return user
}

// RequireCapability checks the authenticated user holds the capability.
func RequireCapability(required permission.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if !user.Can(required) {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + string(required) + "' permission",
			})
		}
		return c.Next()
	}
}

// RequireAnyCapability checks the user holds at least one of the capabilities.
func RequireAnyCapability(required ...permission.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}

		names := make([]string, len(required))
		for i, capability := range required {
			if user.Can(capability) {
				return c.Next()
			}
			names[i] = string(capability)
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(names, ", ") + " permissions",
		})
	}
}

// RequireRole restricts a route to the listed roles.
func RequireRole(roles ...permission.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden: role not allowed"})
	}
}
