package handlers

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentflow/internal/service"
)

var validate = validator.New()

func GetUserID(c *fiber.Ctx) int64 {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return userID
}

// bindJSON decodes and validates the request body into out.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: unable to parse json", service.ErrInvalidRequest)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidRequest, err)
	}
	return nil
}

// respondError writes the error envelope for err. Internal errors are logged
// and their message withheld.
func respondError(c *fiber.Ctx, err error) error {
	info := service.Classify(err)
	message := err.Error()
	if info.Status == fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		message = "internal error"
	}

	return c.Status(info.Status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    info.Code,
			"message": message,
		},
	})
}
