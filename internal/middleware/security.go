package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CrossOrigin lets browser clients read Retry-After, which carries the
// posting cooldown.
func CrossOrigin(cfg *config.Config) fiber.Handler {
	origins := strings.TrimSpace(cfg.CORSOrigins)
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  strings.Join([]string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAuthorization, fiber.HeaderAccept, AdminTokenHeader}, ", "),
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: strings.Join([]string{fiber.HeaderRetryAfter, fiber.HeaderXRequestID}, ", "),
		MaxAge:        600,
	})
}

// SecurityHeaders sets the response headers every API reply carries.
// Legal pages are HTML and keep the same frame and sniffing rules.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderXFrameOptions, "DENY")
		c.Set(fiber.HeaderReferrerPolicy, "no-referrer")
		return c.Next()
	}
}
