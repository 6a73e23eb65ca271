package handlers

import (
	"context"
	"strings"

	"github.com/ggorockee/coffeemode/internal/middleware"
	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/ggorockee/coffeemode/internal/telemetry"
	"github.com/gofiber/fiber/v2"
)

// MetadataResolver is satisfied by *services.PlaceResolver
type MetadataResolver interface {
	ResolveFromMetadata(ctx context.Context, title, description, originalURL string) (*services.ResolutionResult, error)
}

// SharedLinkResolver is satisfied by *services.LinkResolver
type SharedLinkResolver interface {
	ResolveFromSharedLink(ctx context.Context, sharingURL string) (*services.ResolutionResult, error)
}

type GoogleMapsHandler struct {
	metadata MetadataResolver
	links    SharedLinkResolver
}

func NewGoogleMapsHandler(metadata MetadataResolver, links SharedLinkResolver) *GoogleMapsHandler {
	return &GoogleMapsHandler{metadata: metadata, links: links}
}

// SetupGoogleMapsRoutes registers the public resolve routes. identify is
// optional auth: a signed-in caller is attached to the request span.
func SetupGoogleMapsRoutes(router fiber.Router, h *GoogleMapsHandler, identify fiber.Handler) {
	router.Post("/resolve", identify, h.ResolvePlace)
	router.Post("/resolve-link", identify, h.ResolveLink)
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if identity, ok := middleware.CurrentIdentity(c); ok {
		telemetry.SetEndUser(ctx, identity.UID)
	}
	return ctx
}

// ResolvePlaceRequest post metadata; url is the original post link, kept for logs
type ResolvePlaceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

type ResolveLinkRequest struct {
	SharingURL string `json:"sharingUrl"`
}

// ResolvePlace godoc
// @Summary Resolve post metadata to a cafe
// @Description 제목/설명으로 Google Places를 검색해 카페를 찾거나 생성
// @Tags google-maps
// @Accept json
// @Produce json
// @Param request body ResolvePlaceRequest true "Post metadata"
// @Success 200 {object} Response{data=services.ResolutionResult}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Failure 502 {object} Response
// @Router /google-maps/resolve [post]
func (h *GoogleMapsHandler) ResolvePlace(c *fiber.Ctx) error {
	var req ResolvePlaceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.metadata.ResolveFromMetadata(requestContext(c), req.Title, req.Description, req.URL)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Place resolved successfully", result)
}

// ResolveLink godoc
// @Summary Resolve a shared Google Maps link
// @Tags google-maps
// @Accept json
// @Produce json
// @Param request body ResolveLinkRequest true "Sharing URL"
// @Success 200 {object} Response{data=services.ResolutionResult}
// @Failure 400 {object} Response
// @Failure 502 {object} Response
// @Router /google-maps/resolve-link [post]
func (h *GoogleMapsHandler) ResolveLink(c *fiber.Ctx) error {
	var req ResolveLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.SharingURL) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "sharingUrl is required")
	}

	result, err := h.links.ResolveFromSharedLink(requestContext(c), req.SharingURL)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Google Maps link resolved successfully", result)
}
