// middleware/auth.go
package middleware

import (
	"context"
	"log/slog"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

// AdminChecker reports whether a profile carries the admin flag.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RequireSession validates the bearer access token and stores its subject as user_id.
func RequireSession(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(secret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				return unauthorized(c)
			}
			c.Locals(userIDKey, sub)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

// RequireAdmin must run after RequireSession. The flag is read from the
// profile on every request so a revoked admin loses access immediately.
func RequireAdmin(checker AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == "" {
			return unauthorized(c)
		}
		ok, err := checker.IsAdmin(c.UserContext(), userID)
		if err != nil {
			slog.Error("admin lookup failed", "user_id", userID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
		}
		return c.Next()
	}
}

// UserID returns the authenticated profile id, or "" outside RequireSession.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized: invalid or expired token",
	})
}
