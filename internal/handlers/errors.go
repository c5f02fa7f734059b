package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

// internalError logs the cause and hides it from the client.
func internalError(c *fiber.Ctx, action string, err error) error {
	slog.Error("request failed", "action", action, "error", err, "path", c.Path(),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID))
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
