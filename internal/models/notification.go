package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotifyLike         NotificationType = "like"
	NotifyComment      NotificationType = "comment"
	NotifyFollow       NotificationType = "follow"
	NotifyReply        NotificationType = "reply"
	NotifyMention      NotificationType = "mention"
	NotifySystem       NotificationType = "system"
	NotifyReportUpdate NotificationType = "report_update"
)

type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecipientID uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_recipient_created,priority:1" json:"recipient_id"`
	ActorID     *uuid.UUID       `gorm:"type:uuid" json:"actor_id,omitempty"`
	Type        NotificationType `gorm:"size:20;not null" json:"type"`
	EntityID    *uuid.UUID       `gorm:"type:uuid" json:"entity_id,omitempty"`
	Metadata    datatypes.JSON   `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index:idx_notifications_recipient_created,priority:2,sort:desc" json:"created_at"`
	Actor       *User            `gorm:"foreignKey:ActorID" json:"-"`
}
