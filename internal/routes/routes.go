package routes

import (
	"time"

	"github.com/collectiq/collectiq-backend/internal/config"
	"github.com/collectiq/collectiq-backend/internal/handlers"
	"github.com/collectiq/collectiq-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	Collection  *handlers.CollectionHandler
	Folder      *handlers.FolderHandler
	Wishlist    *handlers.WishlistHandler
	Community   *handlers.CommunityHandler
	Achievement *handlers.AchievementHandler
	Metadata    *handlers.MetadataHandler
	Moderation  *handlers.ModerationHandler
	Admin       *handlers.AdminHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health
	api.Get("/health", h.Health.Check)

	// Auth — public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/verify-email", h.Auth.VerifyEmail)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), h.Auth.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), h.Auth.DeleteAccount)

	// Public share links resolve without a token.
	api.Get("/shared/:token", h.Collection.GetShared)

	// Community marketplace browsing is public; sharing and cloning are not.
	api.Get("/community", h.Community.Browse)
	api.Get("/community/:id", h.Community.Get)

	protected := api.Group("", middleware.JWTProtected(cfg))

	collections := protected.Group("/collections")
	collections.Get("/", h.Collection.List)
	collections.Post("/", h.Collection.Create)
	collections.Get("/:id", h.Collection.Get)
	collections.Put("/:id", h.Collection.Update)
	collections.Delete("/:id", h.Collection.Delete)
	collections.Post("/:id/share-token", h.Collection.EnableShareToken)
	collections.Delete("/:id/share-token", h.Collection.RevokeShareToken)
	collections.Post("/:id/items", h.Collection.CreateItem)
	collections.Put("/:id/items/:itemId", h.Collection.UpdateItem)
	collections.Delete("/:id/items/:itemId", h.Collection.DeleteItem)

	folders := protected.Group("/folders")
	folders.Get("/", h.Folder.List)
	folders.Post("/", h.Folder.Create)
	folders.Put("/:id", h.Folder.Update)
	folders.Delete("/:id", h.Folder.Delete)

	wishlist := protected.Group("/wishlist")
	wishlist.Get("/", h.Wishlist.List)
	wishlist.Post("/", h.Wishlist.Create)
	wishlist.Delete("/:id", h.Wishlist.Delete)

	// Recommended catalog browsing; curation lives under /admin.
	protected.Get("/recommended", h.Admin.ListRecommended)
	protected.Get("/recommended/:id", h.Admin.GetRecommended)

	protected.Post("/community/share", h.Community.Share)
	protected.Post("/community/unshare", h.Community.Unshare)
	protected.Post("/community/:id/add", h.Community.AddToAccount)
	protected.Post("/recommended/:id/add", h.Community.AddRecommended)

	protected.Get("/achievements", h.Achievement.List)
	protected.Post("/achievements/check", h.Achievement.Check)

	protected.Get("/metadata/sources", h.Metadata.Sources)
	protected.Get("/metadata/:source/search", h.Metadata.Search)

	protected.Post("/reports", h.Moderation.CreateReport)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Post("/covers/generate", h.Admin.BulkGenerateCovers)
	admin.Post("/items/images", h.Admin.BulkUpdateItemImages)
	admin.Get("/recommended", h.Admin.ListRecommended)
	admin.Post("/recommended", h.Admin.CreateRecommended)
	admin.Get("/recommended/:id", h.Admin.GetRecommended)
	admin.Put("/recommended/:id", h.Admin.UpdateRecommended)
	admin.Post("/recommended/:id/items", h.Admin.BulkImportItems)
	admin.Delete("/recommended/:id", h.Admin.DeleteRecommended)
	admin.Put("/users/:id/verified", h.Admin.SetVerified)
	admin.Put("/users/:id/badge", h.Admin.SetBadge)
	admin.Get("/moderation/reports", h.Moderation.ListReports)
	admin.Put("/moderation/reports/:id", h.Moderation.ActionReport)
}
