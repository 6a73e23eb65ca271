package handlers

import (
	"github.com/ggorockee/coffeemode/internal/logger"
	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every API response uses
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{Code: status, Message: message, Data: data})
}

// respondError classifies err, logs it and writes the envelope.
// Client errors log at warn, server errors at error.
func respondError(c *fiber.Ctx, err error) error {
	appErr := services.Classify(err)

	log := logger.GetLogger("http")
	fields := []interface{}{
		"status", appErr.Status,
		"method", c.Method(),
		"path", c.Path(),
		"error", err.Error(),
	}
	if appErr.Kind == services.KindClient {
		log.Warnw(appErr.Message, fields...)
	} else {
		log.Errorw(appErr.Message, fields...)
	}

	return respond(c, appErr.Status, appErr.Message, nil)
}
