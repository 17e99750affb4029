package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/contentflow/configs"
	"github.com/maheshrc27/contentflow/pkg/utils"
)

type AuthMiddleware struct {
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// AuthMiddleware accepts an agency session from the session cookie or a
// bearer token and stores the user id in c.Locals("user_id").
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		fromCookie := tokenString != ""
		if !fromCookie {
			if bearer, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "); ok {
				tokenString = strings.TrimSpace(bearer)
			}
		}

		if tokenString == "" {
			return unauthorized(c, "missing session")
		}

		claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
		if err != nil || claims.UserID == "" {
			if fromCookie {
				c.Cookie(&fiber.Cookie{
					Name:    m.cfg.CookieName,
					Value:   "",
					Path:    "/",
					MaxAge:  -1,
					Expires: time.Now().Add(-time.Hour),
				})
			}
			return unauthorized(c, "invalid or expired session")
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}
