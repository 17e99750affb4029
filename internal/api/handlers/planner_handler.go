package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/service"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type PlannerHandler struct {
	s service.PlannerService
}

func NewPlannerHandler(s service.PlannerService) *PlannerHandler {
	return &PlannerHandler{s: s}
}

func draftInput(req transfer.DraftRequest) service.DraftInput {
	return service.DraftInput{
		Caption:   req.Caption,
		ImageURL:  req.ImageURL,
		Status:    req.Status,
		Platforms: req.Platforms,
	}
}

func (h *PlannerHandler) Create(c *fiber.Ctx) error {
	var req transfer.DraftRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := h.s.CreateDraft(c.UserContext(), GetUserID(c), c.Params("projectId"), draftInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

func (h *PlannerHandler) List(c *fiber.Ctx) error {
	posts, err := h.s.ListDrafts(c.UserContext(), GetUserID(c), c.Params("projectId"))
	if err != nil {
		return respondError(c, err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return c.JSON(fiber.Map{"posts": posts})
}

func (h *PlannerHandler) Update(c *fiber.Ctx) error {
	var req transfer.DraftRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := h.s.UpdateDraft(c.UserContext(), GetUserID(c), c.Params("projectId"), c.Params("postId"), draftInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

func (h *PlannerHandler) Delete(c *fiber.Ctx) error {
	if err := h.s.DeleteDraft(c.UserContext(), GetUserID(c), c.Params("projectId"), c.Params("postId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
