// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// APIKeyMiddleware requires the public API key on every request when one is configured.
// Clients send it as "apikey" or "X-API-Key". An empty key disables the check.
func APIKeyMiddleware(expected string) fiber.Handler {
	if expected == "" {
		slog.Warn("PUBLIC_API_KEY is not set, API key check disabled")
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		key := c.Get("apikey")
		if key == "" {
			key = c.Get("X-API-Key")
		}
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "api key missing",
			})
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			slog.Warn("invalid api key", "path", c.Path(), "ip", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid api key",
			})
		}
		return c.Next()
	}
}
