package handlers

import (
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxAdminPageSize = 100

type ModerationHandler struct {
	moderationService *services.ModerationService
}

func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func pageParams(c *fiber.Ctx) (int, int) {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit < 1 {
		limit = 20
	}
	if limit > maxAdminPageSize {
		limit = maxAdminPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.moderationService.CreateReport(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		case errors.Is(err, services.ErrAlreadyReported):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		case errors.Is(err, services.ErrInvalidReport), errors.Is(err, services.ErrInvalidReason),
			errors.Is(err, services.ErrDescriptionTooLong):
			return badRequest(c, err.Error())
		}
		return internalError(c, "create_report", err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) BlockUser(c *fiber.Ctx) error {
	blockerID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.BlockUserRequest
	if err := c.BodyParser(&req); err != nil || req.BlockedID == uuid.Nil {
		return badRequest(c, "blocked_id is required")
	}

	if err := h.moderationService.BlockUser(blockerID, req.BlockedID); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfBlock):
			return badRequest(c, err.Error())
		case errors.Is(err, services.ErrAlreadyBlocked):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		}
		return internalError(c, "block", err)
	}

	return c.JSON(fiber.Map{"message": "User blocked successfully"})
}

func (h *ModerationHandler) UnblockUser(c *fiber.Ctx) error {
	blockerID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	blockedID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	if err := h.moderationService.UnblockUser(blockerID, blockedID); err != nil {
		return internalError(c, "unblock", err)
	}

	return c.JSON(fiber.Map{"message": "User unblocked successfully"})
}

func (h *ModerationHandler) ListBlocked(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	users, err := h.moderationService.ListBlocked(userID)
	if err != nil {
		return internalError(c, "list_blocked", err)
	}

	type blocked struct {
		ID uuid.UUID `json:"id"`
		models.Author
	}
	out := make([]blocked, len(users))
	for i := range users {
		out[i] = blocked{ID: users[i].ID, Author: users[i].Author()}
	}
	return c.JSON(fiber.Map{"data": out})
}

// --- Admin ---

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit, offset := pageParams(c)

	reports, total, err := h.moderationService.ListReports(c.Query("status"), limit, offset)
	if err != nil {
		return internalError(c, "list_reports", err)
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *ModerationHandler) ResolveReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var req dto.ResolveReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	// Requests authorised by X-Admin-Token carry no user.
	var adminID *uuid.UUID
	if id, err := identity.GetUserID(c); err == nil {
		adminID = &id
	}

	report, err := h.moderationService.ResolveReport(adminID, reportID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		case errors.Is(err, services.ErrReportResolved):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		case errors.Is(err, services.ErrInvalidAction):
			return badRequest(c, err.Error())
		}
		return internalError(c, "resolve_report", err)
	}

	return c.JSON(report)
}

func (h *ModerationHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := pageParams(c)

	users, total, err := h.moderationService.ListUsers(c.Query("search"), limit, offset)
	if err != nil {
		return internalError(c, "list_users", err)
	}

	type adminUser struct {
		dto.UserResponse
		BanReason  *string   `json:"ban_reason,omitempty"`
		TotalPosts int       `json:"total_posts"`
		CreatedAt  time.Time `json:"created_at"`
	}
	out := make([]adminUser, len(users))
	for i := range users {
		u := &users[i]
		out[i] = adminUser{
			UserResponse: services.ToUserResponse(u),
			BanReason:    u.BanReason,
			TotalPosts:   u.TotalPosts,
			CreatedAt:    u.CreatedAt,
		}
	}

	return c.JSON(fiber.Map{
		"users":  out,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *ModerationHandler) SetBan(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	var req dto.BanUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.moderationService.SetBan(userID, req.Banned, req.Reason)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		}
		return internalError(c, "set_ban", err)
	}

	return c.JSON(fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"is_banned":  user.IsBanned,
		"ban_reason": user.BanReason,
	})
}

func (h *ModerationHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.moderationService.Stats()
	if err != nil {
		return internalError(c, "stats", err)
	}
	return c.JSON(stats)
}
