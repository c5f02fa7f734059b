package posts

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidReaction = errors.New("invalid reaction type")

// nextReaction applies toggle semantics: reacting with the current type
// clears it, anything else replaces it.
func nextReaction(prev *models.ReactionType, requested models.ReactionType) *models.ReactionType {
	if prev != nil && *prev == requested {
		return nil
	}
	return &requested
}

// reactionDelta is how like_count moves for a prev -> next transition.
func reactionDelta(prev, next *models.ReactionType) int {
	switch {
	case prev == nil && next != nil:
		return 1
	case prev != nil && next == nil:
		return -1
	default:
		return 0
	}
}

type ReactionService struct {
	db            *gorm.DB
	notifications *services.NotificationService
}

func NewReactionService(db *gorm.DB, notifications *services.NotificationService) *ReactionService {
	return &ReactionService{db: db, notifications: notifications}
}

// React sets, changes or toggles off the user's reaction. The post's
// like_count and the author's total_likes_received move in the same
// transaction as the reaction row.
func (s *ReactionService) React(userID, postID uuid.UUID, requested models.ReactionType) (*ReactionResult, error) {
	if !requested.Valid() {
		return nil, ErrInvalidReaction
	}
	return s.apply(userID, postID, func(prev *models.ReactionType) *models.ReactionType {
		return nextReaction(prev, requested)
	})
}

// Unreact clears any reaction the user has on the post.
func (s *ReactionService) Unreact(userID, postID uuid.UUID) (*ReactionResult, error) {
	return s.apply(userID, postID, func(*models.ReactionType) *models.ReactionType { return nil })
}

func (s *ReactionService) apply(userID, postID uuid.UUID, decide func(prev *models.ReactionType) *models.ReactionType) (*ReactionResult, error) {
	var (
		post   models.Post
		prev   *models.ReactionType
		next   *models.ReactionType
		result ReactionResult
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockKey(tx, "reaction", userID.String(), postID.String()); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND is_removed = false", postID).First(&post).Error; err != nil {
			return ErrPostNotFound
		}

		var existing models.Reaction
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			t := existing.ReactionType
			prev = &t
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		next = decide(prev)
		switch {
		case next == nil && prev != nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case next != nil && prev == nil:
			if err := tx.Create(&models.Reaction{
				ID:           uuid.New(),
				UserID:       userID,
				PostID:       postID,
				ReactionType: *next,
			}).Error; err != nil {
				return err
			}
		case next != nil && *next != *prev:
			if err := tx.Model(&existing).Update("reaction_type", *next).Error; err != nil {
				return err
			}
		}

		if delta := reactionDelta(prev, next); delta != 0 {
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).Where("id = ?", post.UserID).
				UpdateColumn("total_likes_received", gorm.Expr("total_likes_received + ?", delta)).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Post{}).Where("id = ?", postID).Select("like_count").Scan(&result.LikeCount).Error
	})
	if err != nil {
		return nil, err
	}

	result.Reaction = next
	if prev == nil && next != nil {
		s.notifications.TryNotify(services.Notice{
			RecipientID: post.UserID,
			ActorID:     &userID,
			Type:        models.NotifyLike,
			EntityID:    &postID,
			Metadata:    map[string]interface{}{"reaction": string(*next), "post_title": post.Title},
		})
	}
	return &result, nil
}

// Summary counts reactions per type, most used first.
func (s *ReactionService) Summary(postID uuid.UUID) ([]ReactionCount, error) {
	var rows []ReactionCount
	err := s.db.Model(&models.Reaction{}).
		Select("reaction_type AS type, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group("reaction_type").
		Order("count DESC").Order("reaction_type ASC").
		Scan(&rows).Error
	return rows, err
}
