package posts

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/google/uuid"
)

// FeedPost is a post as a particular viewer sees it.
type FeedPost struct {
	models.Post
	Author       models.Author        `json:"author"`
	IsLiked      bool                 `json:"is_liked"`
	UserReaction *models.ReactionType `json:"user_reaction"`
	IsSaved      bool                 `json:"is_saved"`
}

type FeedPage struct {
	Data       []FeedPost `json:"data"`
	NextCursor *int       `json:"next_cursor"`
}

type CommentView struct {
	ID        uuid.UUID     `json:"id"`
	PostID    uuid.UUID     `json:"post_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Content   string        `json:"content"`
	LikeCount int           `json:"like_count"`
	IsLiked   bool          `json:"is_liked"`
	CreatedAt time.Time     `json:"created_at"`
	Author    models.Author `json:"author"`
}

type CommentPage struct {
	Data       []CommentView `json:"data"`
	NextCursor *int          `json:"next_cursor"`
}

type ReactionResult struct {
	Reaction  *models.ReactionType `json:"reaction"`
	LikeCount int                  `json:"like_count"`
}

type ReactionCount struct {
	Type  models.ReactionType `json:"type"`
	Count int64               `json:"count"`
}

type CommentLikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

func newCommentView(c models.Comment, liked bool) CommentView {
	return CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Content:   c.Content,
		LikeCount: c.LikeCount,
		IsLiked:   liked,
		CreatedAt: c.CreatedAt,
		Author:    c.User.Author(),
	}
}
