package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentflow/internal/service"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type GlobalTimeHandler struct {
	s service.SchedulingService
}

func NewGlobalTimeHandler(s service.SchedulingService) *GlobalTimeHandler {
	return &GlobalTimeHandler{s: s}
}

func (h *GlobalTimeHandler) Get(c *fiber.Ctx) error {
	override, err := h.s.GetGlobalTime(c.UserContext(), GetUserID(c), c.Params("projectId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"globalTime": override})
}

func (h *GlobalTimeHandler) Select(c *fiber.Ctx) error {
	var req transfer.GlobalTimeRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	override, err := h.s.SelectGlobalTime(c.UserContext(), GetUserID(c), c.Params("projectId"), req.Time)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"globalTime": override})
}

func (h *GlobalTimeHandler) Apply(c *fiber.Ctx) error {
	var req transfer.ApplyGlobalTimeRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
	}

	count, err := h.s.ApplyGlobalTime(c.UserContext(), GetUserID(c), c.Params("projectId"), req.PostIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": count})
}

func (h *GlobalTimeHandler) Clear(c *fiber.Ctx) error {
	if err := h.s.ClearGlobalTime(c.UserContext(), GetUserID(c), c.Params("projectId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
