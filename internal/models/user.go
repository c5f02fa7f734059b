package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultAvatar = "👻"

// User is an account. Posts only ever expose the pseudonymous username and avatar.
type User struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email              string         `gorm:"not null;size:255;uniqueIndex" json:"-"`
	Username           string         `gorm:"not null;size:20;uniqueIndex" json:"username"`
	Password           string         `gorm:"not null" json:"-"`
	AvatarType         string         `gorm:"size:20;default:'icon'" json:"avatar_type"`
	AvatarValue        string         `gorm:"size:32;not null" json:"avatar_value"`
	Bio                string         `gorm:"size:160" json:"bio"`
	Role               string         `gorm:"size:20;default:'user'" json:"role"`
	IsBanned           bool           `gorm:"default:false;index" json:"is_banned"`
	BanReason          *string        `gorm:"size:255" json:"ban_reason,omitempty"`
	TotalPosts         int            `gorm:"default:0" json:"total_posts"`
	TotalLikesReceived int            `gorm:"default:0" json:"total_likes_received"`
	TotalCommentsMade  int            `gorm:"default:0" json:"total_comments_made"`
	FollowerCount      int            `gorm:"default:0" json:"follower_count"`
	FollowingCount     int            `gorm:"default:0" json:"following_count"`
	LastPostAt         *time.Time     `json:"last_post_at,omitempty"`
	LastCommentAt      *time.Time     `json:"-"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// Author is the public face of a user attached to posts, comments and notifications.
type Author struct {
	Username    string `json:"username"`
	AvatarType  string `json:"avatar_type"`
	AvatarValue string `json:"avatar_value"`
}

func (u *User) Author() Author {
	return Author{Username: u.Username, AvatarType: u.AvatarType, AvatarValue: u.AvatarValue}
}
