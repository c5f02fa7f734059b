package posts

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCommentNotFound = errors.New("comment not found")

const commentPreviewRunes = 80

type CommentService struct {
	db            *gorm.DB
	moderation    *services.ModerationService
	notifications *services.NotificationService
	limits        Limits
}

func NewCommentService(db *gorm.DB, moderation *services.ModerationService, notifications *services.NotificationService, limits Limits) *CommentService {
	return &CommentService{db: db, moderation: moderation, notifications: notifications, limits: limits}
}

// Add posts a comment, enforcing the per-author cooldown under a row lock on
// the author.
func (s *CommentService) Add(userID, postID uuid.UUID, content string) (*CommentView, error) {
	content, err := ValidateComment(content)
	if err != nil {
		return nil, err
	}
	if ok, reason := s.moderation.FilterContent(content); !ok {
		return nil, &RejectedError{Reason: reason, Message: s.moderation.GetRejectionMessage(reason)}
	}

	var (
		post    models.Post
		author  models.User
		comment models.Comment
	)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&author, "id = ?", userID).Error; err != nil {
			return services.ErrUserNotFound
		}
		now := time.Now().UTC()
		if err := CheckCommentCooldown(s.limits, author.LastCommentAt, now); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND is_removed = false", postID).First(&post).Error; err != nil {
			return ErrPostNotFound
		}

		comment = models.Comment{
			ID:        uuid.New(),
			PostID:    postID,
			UserID:    userID,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"total_comments_made": gorm.Expr("total_comments_made + 1"),
			"last_comment_at":     now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifications.TryNotify(services.Notice{
		RecipientID: post.UserID,
		ActorID:     &userID,
		Type:        models.NotifyComment,
		EntityID:    &postID,
		Metadata:    map[string]interface{}{"comment_id": comment.ID.String(), "preview": preview(content)},
	})

	comment.User = author
	view := newCommentView(comment, false)
	return &view, nil
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= commentPreviewRunes {
		return s
	}
	return string([]rune(s)[:commentPreviewRunes]) + "…"
}

// List returns one page of a post's visible comments, oldest first.
func (s *CommentService) List(viewer, postID uuid.UUID, page int) (*CommentPage, error) {
	page = NormalizePage(page)

	var count int64
	s.db.Model(&models.Post{}).Where("id = ? AND is_removed = false", postID).Count(&count)
	if count == 0 {
		return nil, ErrPostNotFound
	}

	query := s.db.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("post_id = ? AND is_removed = false", postID)
	blocked, err := s.moderation.GetBlockedIDs(viewer)
	if err != nil {
		return nil, err
	}
	if len(blocked) > 0 {
		query = query.Where("user_id NOT IN ?", blocked)
	}

	var rows []models.Comment
	if err := query.Order("created_at ASC").Order("id ASC").
		Offset((page - 1) * CommentPageSize).Limit(CommentPageSize).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	liked := map[uuid.UUID]bool{}
	if viewer != uuid.Nil && len(rows) > 0 {
		ids := make([]uuid.UUID, len(rows))
		for i, c := range rows {
			ids[i] = c.ID
		}
		var likedIDs []uuid.UUID
		if err := s.db.Model(&models.CommentLike{}).
			Where("user_id = ? AND comment_id IN ?", viewer, ids).
			Pluck("comment_id", &likedIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
	}

	views := make([]CommentView, len(rows))
	for i, c := range rows {
		views[i] = newCommentView(c, liked[c.ID])
	}
	return &CommentPage{Data: views, NextCursor: NextCursor(page, len(rows), CommentPageSize)}, nil
}

// ToggleLike likes or unlikes a comment.
func (s *CommentService) ToggleLike(userID, commentID uuid.UUID) (*CommentLikeResult, error) {
	var result CommentLikeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockKey(tx, "comment_like", userID.String(), commentID.String()); err != nil {
			return err
		}
		var comment models.Comment
		if err := tx.Where("id = ? AND is_removed = false", commentID).First(&comment).Error; err != nil {
			return ErrCommentNotFound
		}

		deleted := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).Delete(&models.CommentLike{})
		if deleted.Error != nil {
			return deleted.Error
		}
		delta := -1
		if deleted.RowsAffected == 0 {
			delta = 1
			result.Liked = true
			if err := tx.Create(&models.CommentLike{ID: uuid.New(), UserID: userID, CommentID: commentID}).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).Select("like_count").Scan(&result.LikeCount).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete hides the author's own comment.
func (s *CommentService) Delete(userID, commentID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Where("id = ? AND is_removed = false", commentID).First(&comment).Error; err != nil {
			return ErrCommentNotFound
		}
		if comment.UserID != userID {
			return ErrNotOwner
		}
		if err := tx.Model(&comment).Updates(map[string]interface{}{
			"is_removed":     true,
			"removed_reason": models.RemovedByUser,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("GREATEST(comment_count - 1, 0)")).Error
	})
}
