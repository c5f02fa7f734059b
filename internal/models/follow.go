package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow is a directed edge follower -> following.
type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type SavedPost struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_posts_user_post" json:"user_id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_posts_user_post" json:"post_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Block hides everything the blocked user writes from the blocker's feeds
// and comment threads. It is one-directional.
type Block struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BlockerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair" json:"blocker_id"`
	BlockedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair;index" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}
