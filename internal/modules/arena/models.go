package arena

import (
	"time"

	"github.com/google/uuid"
)

// Battle pairs two posts for one UTC day. Category "" is the all-categories
// battle.
type Battle struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BattleDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_post_battles_date_category" json:"battle_date"`
	Category   string    `gorm:"size:50;not null;default:'';uniqueIndex:idx_post_battles_date_category" json:"category"`
	PostAID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post_a_id"`
	PostBID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post_b_id"`
	VotesA     int       `gorm:"default:0" json:"votes_a"`
	VotesB     int       `gorm:"default:0" json:"votes_b"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Battle) TableName() string { return "post_battles" }

// BattleVote is one user's pick. The unique index makes voting idempotent.
type BattleVote struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BattleID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_battle_votes_battle_user" json:"battle_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_battle_votes_battle_user;index" json:"user_id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (BattleVote) TableName() string { return "battle_votes" }
