package middleware

import (
	"crypto/subtle"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminTokenHeader carries the shared operator token.
const AdminTokenHeader = "X-Admin-Token"

// AdminRequired lets a request through when any of these hold:
//  1. X-Admin-Token matches ADMIN_TOKEN
//  2. the caller's ID or email is listed in config
//  3. the caller's stored role is "admin"
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := config.ParseCSV(cfg.AdminEmails)
	adminUserIDs := config.ParseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" {
			if subtle.ConstantTimeCompare([]byte(c.Get(AdminTokenHeader)), []byte(cfg.AdminToken)) == 1 {
				return c.Next()
			}
		}

		userID, err := identity.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if contains(adminUserIDs, userID.String()) {
			return c.Next()
		}

		var user models.User
		if err := db.Select("id", "email", "role", "is_banned").First(&user, "id = ?", userID).Error; err == nil && !user.IsBanned {
			if user.Role == "admin" || contains(adminEmails, user.Email) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
