package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/service"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type ScheduledPostHandler struct {
	s         service.SchedulingService
	approvals service.ApprovalService
	publish   service.PublishService
}

func NewScheduledPostHandler(s service.SchedulingService, approvals service.ApprovalService, publish service.PublishService) *ScheduledPostHandler {
	return &ScheduledPostHandler{s: s, approvals: approvals, publish: publish}
}

func (h *ScheduledPostHandler) Schedule(c *fiber.Ctx) error {
	var req transfer.ScheduleRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := h.s.Schedule(c.UserContext(), GetUserID(c), c.Params("projectId"), service.ScheduleInput{
		UnscheduledPostID: req.UnscheduledPostID,
		ScheduledDate:     req.ScheduledDate,
		ScheduledTime:     req.ScheduledTime,
		Platforms:         req.PostData.Platforms,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

func (h *ScheduledPostHandler) List(c *fiber.Ctx) error {
	posts, err := h.s.ListScheduled(c.UserContext(), GetUserID(c), c.Params("projectId"))
	if err != nil {
		return respondError(c, err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"posts": posts})
}

func (h *ScheduledPostHandler) UpdateTime(c *fiber.Ctx) error {
	var req transfer.UpdateTimeRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := h.s.UpdateTime(c.UserContext(), GetUserID(c), c.Params("projectId"), req.PostID, req.ScheduledTime)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"post": post})
}

func (h *ScheduledPostHandler) Unschedule(c *fiber.Ctx) error {
	err := h.s.Unschedule(c.UserContext(), GetUserID(c), c.Params("projectId"), c.Query("postId"), c.QueryBool("purge", false))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// EditCaption is the agency side of a caption change. It goes through the
// approval engine so decided posts get flagged for re-approval.
func (h *ScheduledPostHandler) EditCaption(c *fiber.Ctx) error {
	var req transfer.CaptionRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	userID := GetUserID(c)
	post, err := h.s.GetScheduled(c.UserContext(), userID, c.Params("projectId"), c.Params("postId"))
	if err != nil {
		return respondError(c, err)
	}

	post, err = h.approvals.EditCaption(c.UserContext(), post.ClientID, post.ID, req.Caption, "agency:"+strconv.FormatInt(userID, 10))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"post": post})
}

func (h *ScheduledPostHandler) Publish(c *fiber.Ctx) error {
	result, err := h.publish.Publish(c.UserContext(), GetUserID(c), c.Params("projectId"), c.Params("postId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"result": result})
}

func (h *ScheduledPostHandler) PublishAttempts(c *fiber.Ctx) error {
	attempts, err := h.publish.Attempts(c.UserContext(), GetUserID(c), c.Params("projectId"), c.Params("postId"))
	if err != nil {
		return respondError(c, err)
	}
	if attempts == nil {
		attempts = []*models.PublishAttempt{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"attempts": attempts})
}
