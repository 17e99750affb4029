package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/service"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

type CalendarHandler struct {
	s service.CalendarService
}

func NewCalendarHandler(s service.CalendarService) *CalendarHandler {
	return &CalendarHandler{s: s}
}

func (h *CalendarHandler) Calendar(c *fiber.Ctx) error {
	calendar, err := h.s.ProjectCalendar(c.UserContext(), GetUserID(c), c.Params("projectId"), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": calendar})
}

// Move answers 400 invalid_drop_target when the target resolves to no day;
// the caller reverts its optimistic update on any error.
func (h *CalendarHandler) Move(c *fiber.Ctx) error {
	var req transfer.MoveRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	key, err := models.ParsePostKey(req.PostKey)
	if err != nil {
		return respondError(c, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err))
	}

	result, err := h.s.Move(c.UserContext(), GetUserID(c), c.Params("projectId"), service.MoveCommand{Key: key, Target: req.Target})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"result": result})
}
