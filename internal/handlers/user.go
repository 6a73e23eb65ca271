package handlers

import (
	"github.com/ggorockee/coffeemode/internal/middleware"
	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// SetupUserRoutes registers user routes. /me is registered before /:id.
func SetupUserRoutes(router fiber.Router, h *UserHandler, auth fiber.Handler) {
	router.Get("/me", auth, h.GetMe)
	router.Post("/", h.Create)
	router.Get("/", h.List)
	router.Get("/:id", h.Get)
}

// Create godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.CreateUserRequest true "User"
// @Success 201 {object} Response{data=models.User}
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req services.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "User created successfully", user)
}

// Get godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} Response{data=models.User}
// @Failure 404 {object} Response
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "User retrieved successfully", user)
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page (zero based)" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} Response{data=services.ListUsersResponse}
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", services.DefaultPageSize)

	resp, err := h.service.List(c.UserContext(), page, size)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Users retrieved successfully", resp)
}

// GetMe godoc
// @Summary Get current user info
// @Description Firebase 토큰의 UID로 사용자 조회, 없으면 생성
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User}
// @Failure 401 {object} Response
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.service.Me(c.UserContext(), services.Identity{
		UID:   identity.UID,
		Email: identity.Email,
		Name:  identity.Name,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "User retrieved successfully", user)
}
