package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/modules"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Handlers groups the handlers that live outside feature modules.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
	Moderation    *handlers.ModerationHandler
	Notifications *handlers.NotificationHandler
	Legal         *handlers.LegalHandler
	Config        *handlers.RemoteConfigHandler
}

func perIPLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   true,
				"message": "Too many requests, slow down",
			})
		},
	})
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers, mods []modules.Module) {
	api := app.Group("/api")

	// General API rate limit: 120 req/min per IP
	api.Use(perIPLimiter(120))

	jwt := middleware.JWTProtected(cfg)
	optional := middleware.OptionalAuth(cfg)
	notBanned := middleware.NotBanned(db)

	api.Get("/health", h.Health.Check)
	api.Get("/config", h.Config.GetConfig)
	api.Get("/legal/privacy", h.Legal.PrivacyPolicy)
	api.Get("/legal/guidelines", h.Legal.CommunityGuidelines)

	// Credential endpoints get a stricter 10 req/min per IP. Attached per
	// route so /auth/me is not throttled with them.
	authLimit := perIPLimiter(10)
	api.Post("/auth/register", authLimit, h.Auth.Register)
	api.Post("/auth/login", authLimit, h.Auth.Login)
	api.Post("/auth/refresh", authLimit, h.Auth.Refresh)
	api.Get("/auth/username-available", h.Auth.UsernameAvailable)

	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Get("/auth/me", jwt, h.Auth.Me)
	api.Delete("/auth/account", jwt, h.Auth.DeleteAccount)

	// Moderation, user side
	api.Post("/reports", jwt, notBanned, h.Moderation.CreateReport)
	api.Post("/blocks", jwt, notBanned, h.Moderation.BlockUser)
	api.Delete("/blocks/:id", jwt, notBanned, h.Moderation.UnblockUser)
	api.Get("/me/blocked", jwt, h.Moderation.ListBlocked)

	// Notifications. EventSource cannot send headers, so the stream also
	// accepts ?access_token=.
	api.Get("/notifications", jwt, h.Notifications.List)
	api.Get("/notifications/stream", middleware.TokenFromQuery("access_token"), jwt, h.Notifications.Stream)
	api.Put("/notifications/read-all", jwt, h.Notifications.MarkAllRead)
	api.Put("/notifications/:id/read", jwt, h.Notifications.MarkRead)

	// Admin: X-Admin-Token, or a signed-in admin.
	admin := api.Group("/admin", optional, middleware.AdminRequired(db, cfg))
	admin.Get("/reports", h.Moderation.ListReports)
	admin.Put("/reports/:id/resolve", h.Moderation.ResolveReport)
	admin.Get("/users", h.Moderation.ListUsers)
	admin.Put("/users/:id/ban", h.Moderation.SetBan)
	admin.Get("/stats", h.Moderation.Stats)
	admin.Put("/config/:key", h.Config.SetConfigKey)
	admin.Delete("/config/:key", h.Config.DeleteConfigKey)

	r := modules.Routes{
		Router:    api,
		Public:    []fiber.Handler{optional},
		Protected: []fiber.Handler{jwt, notBanned},
	}
	for _, m := range mods {
		m.RegisterRoutes(r, db, cfg)
		if am, ok := m.(modules.AdminModule); ok {
			am.RegisterAdminRoutes(admin, db, cfg)
		}
	}
}
