package models

import (
	"time"

	"github.com/google/uuid"
)

// Setting is an admin-editable value served to clients at /api/config.
// Value is stored as text and decoded according to Type (string, bool,
// int or json).
type Setting struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	Key       string    `gorm:"size:100;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text;not null;default:''" json:"value"`
	Type      string    `gorm:"size:20;not null;default:'string'" json:"type"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
}
