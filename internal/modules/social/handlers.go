package social

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SocialHandler struct {
	service *SocialService
}

func NewSocialHandler(service *SocialService) *SocialHandler {
	return &SocialHandler{service: service}
}

func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrUsernameTaken):
		status, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, ErrSelfFollow), errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrBioTooLong), errors.Is(err, services.ErrInvalidAvatar):
		status, message = fiber.StatusBadRequest, err.Error()
	default:
		slog.Error("social request failed", "error", err, "path", c.Path())
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func (h *SocialHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.service.Profile(identity.ViewerID(c), c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

func (h *SocialHandler) Followers(c *fiber.Ctx) error {
	page, err := h.service.Followers(c.Params("username"), c.QueryInt("page", 1))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

func (h *SocialHandler) Following(c *fiber.Ctx) error {
	page, err := h.service.Following(c.Params("username"), c.QueryInt("page", 1))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

func (h *SocialHandler) ToggleFollow(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid user ID"})
	}
	following, err := h.service.ToggleFollow(userID, targetID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

func (h *SocialHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}
	profile, err := h.service.UpdateProfile(userID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}
