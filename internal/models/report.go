package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportPending  = "pending"
	ReportResolved = "resolved"

	ActionDismiss       = "dismiss"
	ActionRemoveContent = "remove_content"
)

// ReportReasons is the closed set of reasons a user may pick.
var ReportReasons = []string{
	"identity_exposure", "hate_speech", "spam", "violence",
	"sexual_content", "harassment", "misinformation", "other",
}

// Report flags a post or a comment for admin review.
type Report struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReporterID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ReportedUserID *uuid.UUID `gorm:"type:uuid;index" json:"reported_user_id,omitempty"`
	PostID         *uuid.UUID `gorm:"type:uuid;index" json:"post_id,omitempty"`
	CommentID      *uuid.UUID `gorm:"type:uuid;index" json:"comment_id,omitempty"`
	Reason         string     `gorm:"not null;size:50" json:"reason"`
	Description    *string    `gorm:"size:500" json:"description,omitempty"`
	Status         string     `gorm:"not null;default:'pending';size:20;index" json:"status"`
	ActionTaken    *string    `gorm:"size:50" json:"action_taken,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy     *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Reporter       User       `gorm:"foreignKey:ReporterID" json:"-"`
}
