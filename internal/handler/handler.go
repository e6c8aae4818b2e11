package handler

import (
	"errors"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"

	"estampa-fina/internal/middleware"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/postal"
	"estampa-fina/internal/service"
	"estampa-fina/pkg/jwt"
)

// Helpers reading the user info set by middleware.RequireAuth.
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals(middleware.LocalUserID)
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals(middleware.LocalUserName)
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

func getUserEmail(c *fiber.Ctx) string {
	userEmail := c.Locals(middleware.LocalUserEmail)
	if userEmail == nil {
		return ""
	}
	return userEmail.(string)
}

func getActor(c *fiber.Ctx) service.Actor {
	if user := middleware.CurrentUser(c); user != nil {
		return service.ActorFromUser(user)
	}
	return service.Actor{ID: getUserID(c), Name: getUserName(c), Email: getUserEmail(c)}
}

// fail maps a service error onto the HTTP status the client sees.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, postal.ErrInvalidCEP):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrSessionReplaced),
		errors.Is(err, service.ErrSessionTimeout):
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, permission.ErrSelfModification):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, postal.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrSKUExists),
		errors.Is(err, service.ErrCategoryExists):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
}

var errFileRequired = errors.New("file is required")

// formFile opens the multipart field "file". The caller closes the body.
func formFile(c *fiber.Ctx) (service.FileUpload, io.Closer, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return service.FileUpload{}, nil, errFileRequired
	}
	f, err := header.Open()
	if err != nil {
		return service.FileUpload{}, nil, err
	}
	upload := service.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        f,
	}
	return upload, f, nil
}
