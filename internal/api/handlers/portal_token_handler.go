package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/service"
)

type PortalTokenHandler struct {
	s service.PortalTokenService
}

func NewPortalTokenHandler(s service.PortalTokenService) *PortalTokenHandler {
	return &PortalTokenHandler{s: s}
}

func (h *PortalTokenHandler) Create(c *fiber.Ctx) error {
	token, err := h.s.Create(c.UserContext(), GetUserID(c), c.Params("clientId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token})
}

func (h *PortalTokenHandler) List(c *fiber.Ctx) error {
	tokens, err := h.s.List(c.UserContext(), GetUserID(c), c.Params("clientId"))
	if err != nil {
		return respondError(c, err)
	}
	if tokens == nil {
		tokens = []*models.PortalToken{}
	}
	return c.JSON(fiber.Map{"tokens": tokens})
}

func (h *PortalTokenHandler) Remove(c *fiber.Ctx) error {
	tokenID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.UserContext(), GetUserID(c), c.Params("clientId"), int64(tokenID)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
