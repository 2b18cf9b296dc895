package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/collectiq/collectiq-backend/internal/cache"
	"github.com/collectiq/collectiq-backend/internal/config"
	"github.com/collectiq/collectiq-backend/internal/covers"
	"github.com/collectiq/collectiq-backend/internal/database"
	"github.com/collectiq/collectiq-backend/internal/handlers"
	"github.com/collectiq/collectiq-backend/internal/logging"
	"github.com/collectiq/collectiq-backend/internal/metadata"
	"github.com/collectiq/collectiq-backend/internal/middleware"
	"github.com/collectiq/collectiq-backend/internal/routes"
	"github.com/collectiq/collectiq-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		dbLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// External metadata sources
	registry := metadata.NewRegistry()
	registry.Register(metadata.NewOpenLibrarySource(cfg.MetadataTimeout))

	// Services
	reqCache := cache.New(cfg.CacheWindow, cfg.CacheEnabled)
	achievementService := services.NewAchievementService(database.DB)
	authService := services.NewAuthService(database.DB, cfg)
	collectionService := services.NewCollectionService(database.DB, achievementService, reqCache)
	folderService := services.NewFolderService(database.DB, achievementService)
	wishlistService := services.NewWishlistService(database.DB, achievementService)
	communityService := services.NewCommunityService(database.DB, achievementService)
	moderationService := services.NewModerationService(database.DB)
	adminService := services.NewAdminService(database.DB, covers.NewPlaceholderGenerator(), cfg.CoverTimeout)

	// Handlers
	h := routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Health:      handlers.NewHealthHandler(),
		Collection:  handlers.NewCollectionHandler(collectionService),
		Folder:      handlers.NewFolderHandler(folderService),
		Wishlist:    handlers.NewWishlistHandler(wishlistService),
		Community:   handlers.NewCommunityHandler(communityService),
		Achievement: handlers.NewAchievementHandler(achievementService),
		Metadata:    handlers.NewMetadataHandler(registry),
		Moderation:  handlers.NewModerationHandler(moderationService),
		Admin:       handlers.NewAdminHandler(adminService),
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
