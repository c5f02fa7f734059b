package arena

import (
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNoBattle       = errors.New("not enough posts for a battle today")
	ErrBattleNotFound = errors.New("battle not found")
	ErrBattleClosed   = errors.New("voting is closed for this battle")
	ErrAlreadyVoted   = errors.New("you already voted in this battle")
	ErrInvalidChoice  = errors.New("post is not part of this battle")
)

const (
	candidateWindow     = 7 * 24 * time.Hour
	recentBattleDays    = 30
	maxCandidates       = 50
	defaultHistoryLimit = 7
	maxHistoryLimit     = 30
)

// BattlePost is one side of a battle.
type BattlePost struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Category  string        `json:"category"`
	LikeCount int           `json:"like_count"`
	CreatedAt time.Time     `json:"created_at"`
	Author    models.Author `json:"author"`
	Removed   bool          `json:"removed"`
}

type BattleView struct {
	ID         uuid.UUID   `json:"id"`
	BattleDate string      `json:"battle_date"`
	Category   string      `json:"category"`
	PostA      *BattlePost `json:"post_a"`
	PostB      *BattlePost `json:"post_b"`
	VotesA     int         `json:"votes_a"`
	VotesB     int         `json:"votes_b"`
	TotalVotes int         `json:"total_votes"`
	PercentA   int         `json:"percent_a"`
	PercentB   int         `json:"percent_b"`
	UserVote   *uuid.UUID  `json:"user_vote"`
	IsOpen     bool        `json:"is_open"`
}

type BattleService struct {
	db   *gorm.DB
	perm func(int) []int
}

func NewBattleService(db *gorm.DB) *BattleService {
	return &BattleService{db: db, perm: rand.Perm}
}

// GetOrCreateDaily returns today's battle for category, drawing one if none
// exists. Concurrent callers converge on one row through the unique
// (battle_date, category) index.
func (s *BattleService) GetOrCreateDaily(viewer uuid.UUID, category string) (*BattleView, error) {
	category = strings.TrimSpace(category)
	today := DayKey(time.Now())

	battle, err := s.find(today, category)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		battle, err = s.create(today, category)
	}
	if err != nil {
		return nil, err
	}
	return s.view(battle, viewer)
}

func (s *BattleService) find(day, category string) (*Battle, error) {
	var battle Battle
	err := s.db.Where("battle_date = ? AND category = ?", day, category).First(&battle).Error
	if err != nil {
		return nil, err
	}
	return &battle, nil
}

func (s *BattleService) create(day, category string) (*Battle, error) {
	now := time.Now().UTC()

	query := s.db.Model(&models.Post{}).
		Select("id AS post_id, user_id AS author_id").
		Where("is_removed = false AND is_sensitive = false AND created_at >= ?", now.Add(-candidateWindow))
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var candidates []Candidate
	if err := query.Order("like_count DESC").Order("created_at DESC").Limit(maxCandidates).Scan(&candidates).Error; err != nil {
		return nil, err
	}

	var recentBattles []Battle
	since := now.AddDate(0, 0, -recentBattleDays).Format(dateLayout)
	if err := s.db.Select("post_a_id", "post_b_id").Where("battle_date > ?", since).Find(&recentBattles).Error; err != nil {
		return nil, err
	}
	recent := make(map[uuid.UUID]bool, len(recentBattles)*2)
	for _, b := range recentBattles {
		recent[b.PostAID] = true
		recent[b.PostBID] = true
	}

	a, b, ok := PickPair(candidates, recent, s.perm)
	if !ok {
		return nil, ErrNoBattle
	}

	date, _ := time.Parse(dateLayout, day)
	battle := Battle{
		ID:         uuid.New(),
		BattleDate: date,
		Category:   category,
		PostAID:    a.PostID,
		PostBID:    b.PostID,
	}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "battle_date"}, {Name: "category"}},
		DoNothing: true,
	}).Create(&battle)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		slog.Info("daily battle created", "battle_id", battle.ID.String(), "category", category, "date", day)
	}
	return s.find(day, category)
}

// Vote records the user's pick in today's battle.
func (s *BattleService) Vote(userID, battleID, postID uuid.UUID) (*BattleView, error) {
	var battle Battle
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&battle, "id = ?", battleID).Error; err != nil {
			return ErrBattleNotFound
		}
		if DayKey(battle.BattleDate) != DayKey(time.Now()) {
			return ErrBattleClosed
		}

		column := ""
		switch postID {
		case battle.PostAID:
			column = "votes_a"
		case battle.PostBID:
			column = "votes_b"
		default:
			return ErrInvalidChoice
		}

		vote := BattleVote{ID: uuid.New(), BattleID: battleID, UserID: userID, PostID: postID}
		created := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if created.Error != nil {
			return created.Error
		}
		if created.RowsAffected == 0 {
			return ErrAlreadyVoted
		}

		if err := tx.Model(&Battle{}).Where("id = ?", battleID).
			UpdateColumn(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return err
		}
		return tx.First(&battle, "id = ?", battleID).Error
	})
	if err != nil {
		return nil, err
	}
	return s.view(&battle, userID)
}

// History returns finished battles, newest first.
func (s *BattleService) History(viewer uuid.UUID, limit int) ([]BattleView, error) {
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var battles []Battle
	if err := s.db.Where("battle_date < ?", DayKey(time.Now())).
		Order("battle_date DESC").Order("category ASC").
		Limit(limit).Find(&battles).Error; err != nil {
		return nil, err
	}

	views := make([]BattleView, 0, len(battles))
	for i := range battles {
		v, err := s.view(&battles[i], viewer)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *BattleService) view(b *Battle, viewer uuid.UUID) (*BattleView, error) {
	var list []models.Post
	if err := s.db.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("id IN ?", []uuid.UUID{b.PostAID, b.PostBID}).
		Find(&list).Error; err != nil {
		return nil, err
	}

	v := &BattleView{
		ID:         b.ID,
		BattleDate: DayKey(b.BattleDate),
		Category:   b.Category,
		VotesA:     b.VotesA,
		VotesB:     b.VotesB,
		TotalVotes: b.VotesA + b.VotesB,
		IsOpen:     DayKey(b.BattleDate) == DayKey(time.Now()),
	}
	v.PercentA, v.PercentB = Percentages(b.VotesA, b.VotesB)

	for i := range list {
		bp := toBattlePost(&list[i])
		switch list[i].ID {
		case b.PostAID:
			v.PostA = bp
		case b.PostBID:
			v.PostB = bp
		}
	}

	if viewer != uuid.Nil {
		var vote BattleVote
		if err := s.db.Where("battle_id = ? AND user_id = ?", b.ID, viewer).First(&vote).Error; err == nil {
			v.UserVote = &vote.PostID
		}
	}
	return v, nil
}

// toBattlePost blanks posts removed after the battle was drawn.
func toBattlePost(p *models.Post) *BattlePost {
	bp := &BattlePost{
		ID:        p.ID,
		Category:  p.Category,
		LikeCount: p.LikeCount,
		CreatedAt: p.CreatedAt,
		Author:    p.User.Author(),
		Removed:   p.IsRemoved,
	}
	if !p.IsRemoved {
		bp.Title = p.Title
		bp.Content = p.Content
	}
	return bp
}
