package posts

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotOwner     = errors.New("only the author can change this")
)

// RejectedError carries the content filter's verdict.
type RejectedError struct {
	Reason  string
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

type PostService struct {
	db         *gorm.DB
	moderation *services.ModerationService
	limits     Limits
}

func NewPostService(db *gorm.DB, moderation *services.ModerationService, limits Limits) *PostService {
	return &PostService{db: db, moderation: moderation, limits: limits}
}

func (s *PostService) filter(texts ...string) error {
	for _, t := range texts {
		if ok, reason := s.moderation.FilterContent(t); !ok {
			return &RejectedError{Reason: reason, Message: s.moderation.GetRejectionMessage(reason)}
		}
	}
	return nil
}

// Categories returns the active categories in display order.
func (s *PostService) Categories() ([]models.Category, error) {
	var cats []models.Category
	err := s.db.Where("is_active = true").Order("sort_order ASC").Find(&cats).Error
	return cats, err
}

func (s *PostService) categoryExists(tx *gorm.DB, name string) bool {
	var count int64
	tx.Model(&models.Category{}).Where("name = ? AND is_active = true", name).Count(&count)
	return count > 0
}

// Create publishes a post if the author is within quota. The author row is
// locked so concurrent submissions are counted one after another.
func (s *PostService) Create(userID uuid.UUID, in PostInput) (*FeedPost, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.filter(in.Title, in.Content); err != nil {
		return nil, err
	}

	post := models.Post{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       in.Title,
		Content:     in.Content,
		Category:    in.Category,
		PostType:    "text",
		IsSensitive: in.IsSensitive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if !s.categoryExists(tx, in.Category) {
			return ErrInvalidCategory
		}

		var author models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&author, "id = ?", userID).Error; err != nil {
			return services.ErrUserNotFound
		}

		now := time.Now().UTC()
		hourAgo := now.Add(-time.Hour)

		var hourly struct {
			Count  int64
			Oldest *time.Time
		}
		if err := tx.Model(&models.Post{}).
			Select("COUNT(*) AS count, MIN(created_at) AS oldest").
			Where("user_id = ? AND created_at > ?", userID, hourAgo).
			Scan(&hourly).Error; err != nil {
			return err
		}
		var daily int64
		if err := tx.Model(&models.Post{}).
			Where("user_id = ? AND created_at >= ?", userID, StartOfUTCDay(now)).
			Count(&daily).Error; err != nil {
			return err
		}
		oldest := now
		if hourly.Oldest != nil {
			oldest = *hourly.Oldest
		}
		if err := CheckPostQuota(s.limits, hourly.Count, daily, oldest, now); err != nil {
			return err
		}

		post.CreatedAt = now
		post.UpdatedAt = now
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		post.User = author
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"total_posts":  gorm.Expr("total_posts + 1"),
			"last_post_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("post created", "post_id", post.ID.String(), "user_id", userID.String(), "category", post.Category)
	return &FeedPost{Post: post, Author: post.User.Author()}, nil
}

// Update edits the author's own post with the same rules as Create.
func (s *PostService) Update(userID, postID uuid.UUID, in PostInput) (*FeedPost, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.filter(in.Title, in.Content); err != nil {
		return nil, err
	}

	post, err := s.ownedPost(userID, postID)
	if err != nil {
		return nil, err
	}
	if !s.categoryExists(s.db, in.Category) {
		return nil, ErrInvalidCategory
	}

	if err := s.db.Model(post).Updates(map[string]interface{}{
		"title":        in.Title,
		"content":      in.Content,
		"category":     in.Category,
		"is_sensitive": in.IsSensitive,
	}).Error; err != nil {
		return nil, err
	}

	return s.Get(userID, postID)
}

// Delete hides the author's own post.
func (s *PostService) Delete(userID, postID uuid.UUID) error {
	post, err := s.ownedPost(userID, postID)
	if err != nil {
		return err
	}
	reason := models.RemovedByUser
	now := time.Now().UTC()
	return s.db.Model(post).Updates(map[string]interface{}{
		"is_removed":     true,
		"removed_reason": reason,
		"removed_at":     now,
	}).Error
}

func (s *PostService) ownedPost(userID, postID uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := s.db.Where("id = ? AND is_removed = false", postID).First(&post).Error; err != nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		return nil, ErrNotOwner
	}
	return &post, nil
}

// Get loads one visible post.
func (s *PostService) Get(viewer, postID uuid.UUID) (*FeedPost, error) {
	var post models.Post
	err := s.withAuthor(s.db).Where("id = ? AND is_removed = false", postID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	out, err := s.decorate(viewer, []models.Post{post})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Feed lists visible posts newest first, one page of FeedPageSize.
func (s *PostService) Feed(viewer uuid.UUID, page int, category string) (*FeedPage, error) {
	page = NormalizePage(page)
	query, err := s.visible(viewer)
	if err != nil {
		return nil, err
	}
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("posts.category = ?", category)
	}

	var list []models.Post
	if err := query.
		Order("posts.created_at DESC").Order("posts.id DESC").
		Offset((page - 1) * FeedPageSize).Limit(FeedPageSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return s.page(viewer, list, page, FeedPageSize)
}

// Explore ranks recent posts by ExploreScore and returns one page of the
// ranked list.
func (s *PostService) Explore(viewer uuid.UUID, page int) (*FeedPage, error) {
	page = NormalizePage(page)
	now := time.Now().UTC()
	query, err := s.visible(viewer)
	if err != nil {
		return nil, err
	}

	var candidates []models.Post
	if err := query.
		Where("posts.created_at >= ?", now.Add(-exploreWindow)).
		Order("posts.like_count DESC").Order("posts.created_at DESC").
		Limit(exploreMaxCandidates).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	RankExplore(candidates, now)
	from, to := PageBounds(len(candidates), page, ExplorePageSize)
	return s.page(viewer, candidates[from:to], page, ExplorePageSize)
}

// ByAuthor lists a user's visible posts for their profile.
func (s *PostService) ByAuthor(viewer uuid.UUID, username string, page int) (*FeedPage, error) {
	page = NormalizePage(page)
	var author models.User
	if err := s.db.Where("lower(username) = lower(?)", strings.TrimSpace(username)).First(&author).Error; err != nil {
		return nil, services.ErrUserNotFound
	}

	var list []models.Post
	if err := s.withAuthor(s.db).
		Where("user_id = ? AND is_removed = false", author.ID).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * FeedPageSize).Limit(FeedPageSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return s.page(viewer, list, page, FeedPageSize)
}

// ToggleSave bookmarks or un-bookmarks a post and reports the new state.
func (s *PostService) ToggleSave(userID, postID uuid.UUID) (bool, error) {
	saved := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockKey(tx, "save", userID.String(), postID.String()); err != nil {
			return err
		}
		result := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		tx.Model(&models.Post{}).Where("id = ? AND is_removed = false", postID).Count(&count)
		if count == 0 {
			return ErrPostNotFound
		}
		saved = true
		return tx.Create(&models.SavedPost{ID: uuid.New(), UserID: userID, PostID: postID}).Error
	})
	return saved, err
}

// Saved lists the user's bookmarks, newest save first.
func (s *PostService) Saved(userID uuid.UUID, page int) (*FeedPage, error) {
	page = NormalizePage(page)
	var list []models.Post
	if err := s.withAuthor(s.db).
		Joins("JOIN saved_posts ON saved_posts.post_id = posts.id").
		Where("saved_posts.user_id = ? AND posts.is_removed = false", userID).
		Order("saved_posts.created_at DESC").
		Offset((page - 1) * SavedPageSize).Limit(SavedPageSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return s.page(userID, list, page, SavedPageSize)
}

// visible is the base query for lists: not removed and not by anyone the
// viewer blocked.
func (s *PostService) visible(viewer uuid.UUID) (*gorm.DB, error) {
	query := s.withAuthor(s.db).Model(&models.Post{}).Where("posts.is_removed = false")
	blocked, err := s.moderation.GetBlockedIDs(viewer)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	if len(blocked) > 0 {
		query = query.Where("posts.user_id NOT IN ?", blocked)
	}
	return query, nil
}

func (s *PostService) withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (s *PostService) page(viewer uuid.UUID, list []models.Post, page, size int) (*FeedPage, error) {
	data, err := s.decorate(viewer, list)
	if err != nil {
		return nil, err
	}
	return &FeedPage{Data: data, NextCursor: NextCursor(page, len(list), size)}, nil
}

// decorate attaches the author summary and the viewer's reaction and
// bookmark state to each post.
func (s *PostService) decorate(viewer uuid.UUID, list []models.Post) ([]FeedPost, error) {
	out := make([]FeedPost, len(list))
	if len(list) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}

	reactions := map[uuid.UUID]models.ReactionType{}
	saved := map[uuid.UUID]bool{}
	if viewer != uuid.Nil {
		var rows []models.Reaction
		if err := s.db.Where("user_id = ? AND post_id IN ?", viewer, ids).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			reactions[r.PostID] = r.ReactionType
		}

		var savedIDs []uuid.UUID
		if err := s.db.Model(&models.SavedPost{}).Where("user_id = ? AND post_id IN ?", viewer, ids).Pluck("post_id", &savedIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range savedIDs {
			saved[id] = true
		}
	}

	for i, p := range list {
		out[i] = FeedPost{Post: p, Author: p.User.Author(), IsSaved: saved[p.ID]}
		if rt, ok := reactions[p.ID]; ok {
			out[i].IsLiked = true
			out[i].UserReaction = &rt
		}
	}
	return out, nil
}
