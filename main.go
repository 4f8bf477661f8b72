package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"game-hub/config"
	"game-hub/database"
	"game-hub/handlers"
	"game-hub/logging"
	"game-hub/middleware"
	"game-hub/services"
	"game-hub/storage"
	"game-hub/workers"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading environment variables directly")
	}

	cfg := config.Load()
	logging.Setup(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		slog.Error("object storage init failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	gameService := services.NewGameService(db, store, cfg.ImagesBucket)
	steamService := services.NewSteamService(services.SteamConfig{
		StoreURL:   cfg.SteamStoreURL,
		APIURL:     cfg.SteamAPIURL,
		Country:    cfg.SteamCountry,
		Language:   cfg.SteamLanguage,
		AppListTTL: cfg.SteamAppListTTL,
	})
	svc := handlers.Services{
		Games:    gameService,
		Comments: services.NewCommentService(db),
		Profiles: services.NewProfileService(db, store, cfg.AvatarsBucket),
		Auth:     services.NewAuthService(db, cfg),
		Steam:    steamService,
	}

	reconciler, err := gameService.StartRatingReconciler(cfg.RatingReconcileInterval)
	if err != nil {
		slog.Error("rating reconciler failed to start", "error", err)
		os.Exit(1)
	}
	workers.NewMetadataSyncWorker(db, steamService, cfg.MetadataRefreshInterval).Start(ctx)

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxImageBytes + 1024*1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg.AllowedOrigins))

	handlers.Setup(app, cfg, db, svc)

	if disk, ok := store.(*storage.DiskStore); ok {
		app.Static("/uploads", disk.Root())
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "origins", cfg.AllowedOrigins)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if err := reconciler.Shutdown(); err != nil {
		slog.Error("scheduler shutdown error", "error", err)
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}
	slog.Info("server stopped")
}
