package middleware

import (
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NotBanned runs after JWTProtected. Access tokens outlive a ban, so the
// flag is read from the database on every protected request.
func NotBanned(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := identity.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
		}

		var user models.User
		if err := db.Select("id", "is_banned").First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Account not found"})
		}
		if user.IsBanned {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: true, Message: "Account is banned"})
		}
		return c.Next()
	}
}
