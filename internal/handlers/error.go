package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the custom error handler for Fiber.
// Errors returned by handlers and middleware leave in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return respond(c, fe.Code, fe.Message, nil)
	}
	return respondError(c, err)
}

// NotFound answers unmatched routes
func NotFound(c *fiber.Ctx) error {
	return respond(c, fiber.StatusNotFound, "Not Found", nil)
}
