package handlers

import (
	"game-hub/middleware"
	"game-hub/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth     *services.AuthService
	Profiles *services.ProfileService
}

func SetupAuthRoutes(api fiber.Router, h *AuthHandler, auth fiber.Handler) {
	g := api.Group("/auth")
	g.Post("/signup", h.SignUp)
	g.Post("/signin", h.SignIn)
	g.Post("/refresh", h.Refresh)
	g.Post("/signout", h.SignOut)
	g.Get("/session", auth, h.Session)
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req services.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	resp, err := h.Auth.SignUp(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req services.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	resp, err := h.Auth.SignIn(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req services.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	resp, err := h.Auth.Refresh(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// SignOut revokes the refresh token. It answers 204 even for unknown tokens.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	var req services.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.Auth.SignOut(c.UserContext(), req); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Session(c *fiber.Ctx) error {
	profile, err := h.Profiles.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile)
}
