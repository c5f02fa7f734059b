package arena

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BattleHandler struct {
	service *BattleService
}

func NewBattleHandler(service *BattleService) *BattleHandler {
	return &BattleHandler{service: service}
}

type VoteRequest struct {
	PostID string `json:"post_id"`
}

func battleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"
	switch {
	case errors.Is(err, ErrNoBattle), errors.Is(err, ErrBattleNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, ErrBattleClosed), errors.Is(err, ErrInvalidChoice):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, ErrAlreadyVoted):
		status, message = fiber.StatusConflict, err.Error()
	default:
		slog.Error("battle request failed", "error", err, "path", c.Path())
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func (h *BattleHandler) Today(c *fiber.Ctx) error {
	battle, err := h.service.GetOrCreateDaily(identity.ViewerID(c), c.Query("category"))
	if err != nil {
		return battleError(c, err)
	}
	return c.JSON(battle)
}

func (h *BattleHandler) History(c *fiber.Ctx) error {
	battles, err := h.service.History(identity.ViewerID(c), c.QueryInt("limit", defaultHistoryLimit))
	if err != nil {
		return battleError(c, err)
	}
	return c.JSON(fiber.Map{"data": battles})
}

func (h *BattleHandler) Vote(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
	}
	battleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid battle ID"})
	}

	var req VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "post_id is required"})
	}

	battle, err := h.service.Vote(userID, battleID, postID)
	if err != nil {
		return battleError(c, err)
	}
	return c.JSON(battle)
}

// Draw forces today's battle for a category to exist. Admin only.
func (h *BattleHandler) Draw(c *fiber.Ctx) error {
	battle, err := h.service.GetOrCreateDaily(uuid.Nil, c.Query("category"))
	if err != nil {
		return battleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(battle)
}
