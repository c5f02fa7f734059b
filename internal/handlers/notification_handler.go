package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const streamPingInterval = 25 * time.Second

type NotificationHandler struct {
	notifications *services.NotificationService
	hub           *realtime.Hub
}

func NewNotificationHandler(notifications *services.NotificationService, hub *realtime.Hub) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	list, unread, err := h.notifications.List(userID)
	if err != nil {
		return internalError(c, "list_notifications", err)
	}
	return c.JSON(fiber.Map{"data": list, "unread_count": unread})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notification ID")
	}

	if err := h.notifications.MarkRead(userID, id); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		}
		return internalError(c, "mark_read", err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	n, err := h.notifications.MarkAllRead(userID)
	if err != nil {
		return internalError(c, "mark_all_read", err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// Stream is a Server-Sent Events feed of the caller's new notifications.
// A comment line is sent periodically so proxies keep the connection open
// and dead clients are detected on the next flush.
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, cancel := h.hub.Subscribe(userID)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(streamPingInterval)
		defer ticker.Stop()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case payload, ok := <-events:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				slog.Debug("notification stream closed", "user_id", userID.String(), "error", err)
				return
			}
		}
	})
	return nil
}
