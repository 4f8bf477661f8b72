package handlers

import (
	"game-hub/services"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Profiles *services.ProfileService
	Games    *services.GameService
}

// SetupAdminRoutes mounts the moderation API. Every route needs a session and the admin flag.
func SetupAdminRoutes(api fiber.Router, h *AdminHandler, auth, admin fiber.Handler) {
	g := api.Group("/admin", auth, admin)

	g.Get("/profiles", h.ListProfiles)
	g.Post("/profiles/:id/toggle-admin", h.ToggleAdmin)

	g.Get("/games", h.ListGames)
	g.Patch("/games/:id", h.UpdateGame)
	g.Delete("/games/:id", h.DeleteGame)

	g.Get("/stats", h.Stats)
}

func (h *AdminHandler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := h.Profiles.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profiles)
}

func (h *AdminHandler) ToggleAdmin(c *fiber.Ctx) error {
	profile, err := h.Profiles.ToggleAdmin(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile)
}

func (h *AdminHandler) ListGames(c *fiber.Ctx) error {
	games, err := h.Games.List(c.UserContext(), services.ListQuery{})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(games)
}

func (h *AdminHandler) UpdateGame(c *fiber.Ctx) error {
	var in services.UpdateGameInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	game, err := h.Games.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(game)
}

func (h *AdminHandler) DeleteGame(c *fiber.Ctx) error {
	if err := h.Games.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "game deleted"})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Profiles.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}
