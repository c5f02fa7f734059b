package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PostID        uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	LikeCount     int       `gorm:"default:0" json:"like_count"`
	ReportCount   int       `gorm:"default:0" json:"report_count"`
	IsRemoved     bool      `gorm:"default:false;index" json:"-"`
	RemovedReason *string   `gorm:"size:255" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	User          User      `gorm:"foreignKey:UserID" json:"-"`
}

type CommentLike struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_user_comment" json:"user_id"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_user_comment;index" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
