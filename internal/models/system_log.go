package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog is an ERROR+ log record kept for 30 days.
type SystemLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Level     string         `gorm:"size:10;not null" json:"level"`
	Message   string         `gorm:"type:text" json:"message"`
	RequestID string         `gorm:"size:64;index" json:"request_id,omitempty"`
	Path      string         `gorm:"size:255" json:"path,omitempty"`
	UserID    *string        `gorm:"size:36;index" json:"user_id,omitempty"`
	Action    string         `gorm:"size:100" json:"action,omitempty"`
	Error     string         `gorm:"type:text" json:"error,omitempty"`
	LatencyMs int            `json:"latency_ms,omitempty"`
	Extra     datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
}
