package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/realtime"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	hub *realtime.Hub
}

func NewHealthHandler(hub *realtime.Hub) *HealthHandler {
	return &HealthHandler{hub: hub}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	resp := dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	}
	if h.hub != nil {
		resp.Listeners = h.hub.Count()
	}
	if status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
