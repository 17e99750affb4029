package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentflow/internal/service"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type UploadHandler struct {
	s service.UploadService
}

func NewUploadHandler(s service.UploadService) *UploadHandler {
	return &UploadHandler{s: s}
}

func (h *UploadHandler) Convert(c *fiber.Ctx) error {
	var req transfer.ConvertUploadRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := h.s.Convert(c.UserContext(), GetUserID(c), c.Params("uploadId"), req.ProjectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}
