package handlers

import (
	"errors"
	"time"

	"game-hub/apperror"
	"game-hub/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type MetadataHandler struct {
	Steam *services.SteamService
}

// SetupMetadataRoutes mounts the three Steam proxies behind a per-IP limiter.
func SetupMetadataRoutes(api fiber.Router, h *MetadataHandler, maxPerMinute int) {
	g := api.Group("/metadata", limiter.New(limiter.Config{
		Max:               maxPerMinute,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		},
	}))
	g.Post("/search", h.Search)
	g.Post("/resolve", h.Resolve)
	g.Post("/details", h.Details)
}

func (h *MetadataHandler) Search(c *fiber.Ctx) error {
	var input struct {
		SearchTerm string `json:"searchTerm"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	apps, err := h.Steam.Search(c.UserContext(), input.SearchTerm)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(apps)
}

func (h *MetadataHandler) Resolve(c *fiber.Ctx) error {
	var input struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	app, err := h.Steam.Resolve(c.UserContext(), input.URL)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(app)
}

func (h *MetadataHandler) Details(c *fiber.Ctx) error {
	var input struct {
		AppID int `json:"appId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	details, err := h.Steam.Details(c.UserContext(), input.AppID)
	if errors.Is(err, apperror.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Game details not found",
		})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(details)
}
