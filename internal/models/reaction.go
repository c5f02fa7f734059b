package models

import (
	"time"

	"github.com/google/uuid"
)

type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionHaha  ReactionType = "haha"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

var ReactionTypes = []ReactionType{ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry}

func (r ReactionType) Valid() bool {
	for _, t := range ReactionTypes {
		if r == t {
			return true
		}
	}
	return false
}

// Reaction is the join row behind posts.like_count. At most one per user per post.
type Reaction struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_user_post" json:"user_id"`
	PostID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_user_post;index" json:"post_id"`
	ReactionType ReactionType `gorm:"size:10;not null;default:'like'" json:"reaction_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
