package handlers

import (
	"game-hub/config"
	"game-hub/database"
	"game-hub/middleware"
	"game-hub/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Games    *services.GameService
	Comments *services.CommentService
	Profiles *services.ProfileService
	Auth     *services.AuthService
	Steam    *services.SteamService
}

// Setup mounts every route under /api. Global middleware is the caller's job.
func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, svc Services) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.Ping(db); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", middleware.APIKeyMiddleware(cfg.PublicAPIKey))

	auth := middleware.RequireSession(cfg.JWTSecret)
	admin := middleware.RequireAdmin(svc.Profiles)

	SetupAuthRoutes(api, &AuthHandler{Auth: svc.Auth, Profiles: svc.Profiles}, auth)
	SetupGameRoutes(api, &GameHandler{Games: svc.Games, Comments: svc.Comments}, auth)
	SetupProfileRoutes(api, &ProfileHandler{
		Profiles:      svc.Profiles,
		Comments:      svc.Comments,
		MaxImageBytes: cfg.MaxImageBytes,
	}, auth)
	SetupStorageRoutes(api, &StorageHandler{Games: svc.Games, MaxImageBytes: cfg.MaxImageBytes}, auth)
	SetupAdminRoutes(api, &AdminHandler{Profiles: svc.Profiles, Games: svc.Games}, auth, admin)
	SetupMetadataRoutes(api, &MetadataHandler{Steam: svc.Steam}, cfg.MetadataRPM)
}
