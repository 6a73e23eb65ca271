package handlers

import (
	"github.com/ggorockee/coffeemode/internal/middleware"
	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ImageHandler struct {
	tokens *services.UploadTokenService
}

func NewImageHandler(tokens *services.UploadTokenService) *ImageHandler {
	return &ImageHandler{tokens: tokens}
}

func SetupImageRoutes(router fiber.Router, h *ImageHandler, auth fiber.Handler) {
	router.Post("/upload-token", auth, h.IssueUploadToken)
}

// IssueUploadToken godoc
// @Summary Issue an image upload token
// @Description 이미지 워커에 직접 업로드할 때 쓰는 단기 토큰 발급
// @Tags images
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=services.UploadToken}
// @Failure 401 {object} Response
// @Failure 503 {object} Response
// @Router /images/upload-token [post]
func (h *ImageHandler) IssueUploadToken(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	token, err := h.tokens.Issue(c.UserContext(), identity.UID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Upload token issued", token)
}
