package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RemovedByUser  = "deleted_by_user"
	RemovedByAdmin = "Admin moderation via Dashboard"
)

// Post is an anonymous text entry. Rows are never hard-deleted; IsRemoved hides them.
type Post struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title         string     `gorm:"size:100;not null" json:"title"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Category      string     `gorm:"size:50;not null;index" json:"category"`
	PostType      string     `gorm:"size:20;default:'text'" json:"post_type"`
	IsSensitive   bool       `gorm:"default:false" json:"is_sensitive"`
	LikeCount     int        `gorm:"default:0" json:"like_count"`
	CommentCount  int        `gorm:"default:0" json:"comment_count"`
	ReportCount   int        `gorm:"default:0" json:"report_count"`
	IsRemoved     bool       `gorm:"default:false;index" json:"-"`
	RemovedReason *string    `gorm:"size:255" json:"-"`
	RemovedAt     *time.Time `json:"-"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	User          User       `gorm:"foreignKey:UserID" json:"-"`
}

// Category is a selectable post category.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Emoji       string    `gorm:"size:16" json:"emoji"`
	Description string    `gorm:"size:255" json:"description"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
}

// DefaultCategories seeds the categories table on first boot.
var DefaultCategories = []Category{
	{Name: "Confissão", Emoji: "🤫", Description: "Segredos que você nunca contou", SortOrder: 1},
	{Name: "Desabafo", Emoji: "💔", Description: "Coloque para fora", SortOrder: 2},
	{Name: "WTF", Emoji: "🤯", Description: "Situações inexplicáveis", SortOrder: 3},
	{Name: "Engraçado", Emoji: "😂", Description: "Histórias para rir", SortOrder: 4},
	{Name: "Paranormal", Emoji: "👻", Description: "Coisas que não têm explicação", SortOrder: 5},
	{Name: "Pensamento", Emoji: "💭", Description: "Reflexões soltas", SortOrder: 6},
	{Name: "Polêmico", Emoji: "🔥", Description: "Opiniões que dividem", SortOrder: 7},
	{Name: "Chocante", Emoji: "😱", Description: "Difícil de acreditar", SortOrder: 8},
	{Name: "Relacionamentos", Emoji: "💘", Description: "Amor, crush e términos", SortOrder: 9},
	{Name: "Trabalho", Emoji: "👨‍💼", Description: "Chefes, colegas e rotina", SortOrder: 10},
}
