package handlers

import (
	"strconv"

	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CafeHandler struct {
	service *services.CafeService
}

func NewCafeHandler(service *services.CafeService) *CafeHandler {
	return &CafeHandler{service: service}
}

// SetupCafeRoutes registers cafe routes; writes go through auth
func SetupCafeRoutes(router fiber.Router, h *CafeHandler, auth fiber.Handler) {
	router.Get("/", h.List)
	router.Get("/nearby", h.Nearby)
	router.Get("/:id", h.Get)
	router.Post("/", auth, h.Create)
	router.Put("/:id", auth, h.Update)
	router.Delete("/:id", auth, h.Delete)
}

// List godoc
// @Summary List cafes
// @Tags cafes
// @Produce json
// @Success 200 {object} Response{data=[]models.Cafe}
// @Router /cafes [get]
func (h *CafeHandler) List(c *fiber.Ctx) error {
	cafes, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Cafes retrieved successfully", cafes)
}

// Nearby godoc
// @Summary Search cafes around a point
// @Tags cafes
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radiusKm query number false "Radius in km (default 3, max 50)"
// @Success 200 {object} Response{data=[]services.NearbyCafe}
// @Failure 400 {object} Response
// @Router /cafes/nearby [get]
func (h *CafeHandler) Nearby(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat is required and must be a number")
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lng is required and must be a number")
	}
	radius := services.DefaultNearbyRadiusKm
	if raw := c.Query("radiusKm"); raw != "" {
		if radius, err = strconv.ParseFloat(raw, 64); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "radiusKm must be a number")
		}
	}

	cafes, err := h.service.Nearby(c.UserContext(), lat, lng, radius)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Nearby cafes retrieved successfully", cafes)
}

// Get godoc
// @Summary Get a cafe
// @Tags cafes
// @Produce json
// @Param id path string true "Cafe ID"
// @Success 200 {object} Response{data=models.Cafe}
// @Failure 404 {object} Response
// @Router /cafes/{id} [get]
func (h *CafeHandler) Get(c *fiber.Ctx) error {
	cafe, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Cafe retrieved successfully", cafe)
}

// Create godoc
// @Summary Create a cafe
// @Tags cafes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CafeRequest true "Cafe"
// @Success 201 {object} Response{data=models.Cafe}
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Router /cafes [post]
func (h *CafeHandler) Create(c *fiber.Ctx) error {
	var req services.CafeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	cafe, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Cafe created successfully", cafe)
}

// Update godoc
// @Summary Replace a cafe's editable fields
// @Tags cafes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cafe ID"
// @Param request body services.CafeRequest true "Cafe"
// @Success 200 {object} Response{data=models.Cafe}
// @Router /cafes/{id} [put]
func (h *CafeHandler) Update(c *fiber.Ctx) error {
	var req services.CafeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	cafe, err := h.service.Update(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Cafe updated successfully", cafe)
}

// Delete godoc
// @Summary Delete a cafe
// @Tags cafes
// @Security BearerAuth
// @Param id path string true "Cafe ID"
// @Success 200 {object} Response
// @Router /cafes/{id} [delete]
func (h *CafeHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Cafe deleted successfully", nil)
}
