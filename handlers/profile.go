package handlers

import (
	"bytes"

	"game-hub/middleware"
	"game-hub/services"

	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	Profiles      *services.ProfileService
	Comments      *services.CommentService
	MaxImageBytes int
}

func SetupProfileRoutes(api fiber.Router, h *ProfileHandler, auth fiber.Handler) {
	me := api.Group("/profiles/me", auth)
	me.Get("/", h.Me)
	me.Patch("/", h.UpdateMe)
	me.Put("/avatar", h.ReplaceAvatar)
	me.Get("/comments", h.MyComments)
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	profile, err := h.Profiles.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	profile, err := h.Profiles.UpdateUsername(c.UserContext(), middleware.UserID(c), input.Username)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile)
}

// ReplaceAvatar takes the raw image as the request body; the file name comes from X-File-Name.
func (h *ProfileHandler) ReplaceAvatar(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "avatar body is empty")
	}
	if h.MaxImageBytes > 0 && len(body) > h.MaxImageBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "avatar is too large"})
	}

	profile, err := h.Profiles.ReplaceAvatar(
		c.UserContext(),
		middleware.UserID(c),
		fileName(c, "avatar"),
		c.Get(fiber.HeaderContentType),
		bytes.NewReader(body),
	)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) MyComments(c *fiber.Ctx) error {
	comments, err := h.Comments.ListByUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(comments)
}

func fileName(c *fiber.Ctx, fallback string) string {
	if name := c.Get("X-File-Name"); name != "" {
		return name
	}
	return fallback
}
