package posts

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PostHandler struct {
	posts     *PostService
	reactions *ReactionService
	comments  *CommentService
}

func NewPostHandler(posts *PostService, reactions *ReactionService, comments *CommentService) *PostHandler {
	return &PostHandler{posts: posts, reactions: reactions, comments: comments}
}

type ReactRequest struct {
	Type models.ReactionType `json:"type"`
}

type AddCommentRequest struct {
	Content string `json:"content"`
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var rateLimited *RateLimitError
	var rejected *RejectedError

	switch {
	case errors.As(err, &rateLimited):
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(rateLimited.RetryAfterSeconds()))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       true,
			"message":     rateLimited.Message,
			"retry_after": rateLimited.RetryAfterSeconds(),
		})
	case errors.As(err, &rejected):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": rejected.Message,
			"reason":  rejected.Reason,
		})
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound), errors.Is(err, services.ErrUserNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		return errorJSON(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTitle), errors.Is(err, ErrInvalidContent), errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidComment), errors.Is(err, ErrInvalidReaction):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	slog.Error("posts request failed", "error", err, "path", c.Path())
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(param))
}

// --- Public (auth optional) ---

func (h *PostHandler) Feed(c *fiber.Ctx) error {
	page, err := h.posts.Feed(identity.ViewerID(c), c.QueryInt("page", 1), c.Query("category"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *PostHandler) Explore(c *fiber.Ctx) error {
	page, err := h.posts.Explore(identity.ViewerID(c), c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	post, err := h.posts.Get(identity.ViewerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) ByAuthor(c *fiber.Ctx) error {
	page, err := h.posts.ByAuthor(identity.ViewerID(c), c.Params("username"), c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *PostHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.posts.Categories()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": cats})
}

func (h *PostHandler) Comments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	page, err := h.comments.List(identity.ViewerID(c), id, c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *PostHandler) Reactions(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	summary, err := h.reactions.Summary(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": summary})
}

// --- Protected ---

func (h *PostHandler) Create(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var in PostInput
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	post, err := h.posts.Create(userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	var in PostInput
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	post, err := h.posts.Update(userID, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	if err := h.posts.Delete(userID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *PostHandler) React(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	req := ReactRequest{Type: models.ReactionLike}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if req.Type == "" {
		req.Type = models.ReactionLike
	}
	result, err := h.reactions.React(userID, id, req.Type)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *PostHandler) Unreact(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	result, err := h.reactions.Unreact(userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *PostHandler) AddComment(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	var req AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	comment, err := h.comments.Add(userID, id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *PostHandler) LikeComment(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid comment ID")
	}
	result, err := h.comments.ToggleLike(userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *PostHandler) DeleteComment(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid comment ID")
	}
	if err := h.comments.Delete(userID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *PostHandler) ToggleSave(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	saved, err := h.posts.ToggleSave(userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"saved": saved})
}

func (h *PostHandler) Saved(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	page, err := h.posts.Saved(userID, c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}
