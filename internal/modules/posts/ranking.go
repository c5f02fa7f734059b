package posts

import (
	"math"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
)

const (
	FeedPageSize    = 10
	ExplorePageSize = 20
	CommentPageSize = 50
	SavedPageSize   = 10

	exploreWindow        = 7 * 24 * time.Hour
	exploreMaxCandidates = 500
)

// ExploreScore favours engagement and decays with age. Comments weigh twice
// a reaction.
func ExploreScore(likes, comments int, age time.Duration) float64 {
	hours := age.Hours()
	if hours < 0 {
		hours = 0
	}
	return float64(likes+2*comments+1) / math.Pow(hours+2, 1.5)
}

// RankExplore orders posts by score, then newest, then id, so pages are
// stable for a given now.
func RankExplore(list []models.Post, now time.Time) {
	type ranked struct {
		post  models.Post
		score float64
	}
	tmp := make([]ranked, len(list))
	for i, p := range list {
		tmp[i] = ranked{post: p, score: ExploreScore(p.LikeCount, p.CommentCount, now.Sub(p.CreatedAt))}
	}
	sort.SliceStable(tmp, func(i, j int) bool {
		a, b := tmp[i], tmp[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.post.ID.String() < b.post.ID.String()
	})
	for i := range tmp {
		list[i] = tmp[i].post
	}
}

// PageBounds returns the slice bounds of a 1-based page over total items.
func PageBounds(total, page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page-1 > total/size {
		return total, total
	}
	from := (page - 1) * size
	if from > total {
		from = total
	}
	to := from + size
	if to > total {
		to = total
	}
	return from, to
}

// NextCursor is page+1 when the page came back full, nil otherwise.
func NextCursor(page, got, size int) *int {
	if got < size {
		return nil
	}
	next := page + 1
	return &next
}

// MaxPage bounds page queries so offsets cannot overflow.
const MaxPage = 10000

// NormalizePage clamps the page query to [1, MaxPage].
func NormalizePage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}
