package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Pinger is satisfied by *database.DB
type Pinger interface {
	Ping() error
}

// Home godoc
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router / [get]
func Home(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "Welcome to coffeemode API", nil)
}

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func HealthCheck(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "ok", fiber.Map{"status": "healthy"})
}

// LivenessCheck k8s liveness probe
func LivenessCheck(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "ok", fiber.Map{"status": "alive"})
}

// ReadinessCheck k8s readiness probe (DB 연결 확인)
func ReadinessCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := db.Ping(); err != nil {
			return respond(c, fiber.StatusServiceUnavailable, "database unavailable", fiber.Map{"status": "not ready"})
		}
		return respond(c, fiber.StatusOK, "ok", fiber.Map{"status": "ready"})
	}
}
