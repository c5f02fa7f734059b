package posts

import (
	"fmt"
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
)

// Limits are the per-author write quotas.
type Limits struct {
	PostsPerHour    int
	PostsPerDay     int
	CommentCooldown time.Duration
}

func LimitsFromConfig(cfg *config.Config) Limits {
	return Limits{
		PostsPerHour:    cfg.MaxPostsPerHour,
		PostsPerDay:     cfg.MaxPostsPerDay,
		CommentCooldown: cfg.CommentCooldown,
	}
}

// RateLimitError is returned when a quota is exhausted. Handlers answer 429
// with RetryAfter in the Retry-After header.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string { return e.Message }

// RetryAfterSeconds rounds up so clients never retry too early.
func (e *RateLimitError) RetryAfterSeconds() int {
	s := int(math.Ceil(e.RetryAfter.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

func StartOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckPostQuota applies the rolling-hour and UTC-day post limits.
// oldestInHour is the creation time of the oldest post inside the last hour
// and is only read when the hourly limit is hit.
func CheckPostQuota(l Limits, hourCount, dayCount int64, oldestInHour, now time.Time) error {
	if l.PostsPerDay > 0 && dayCount >= int64(l.PostsPerDay) {
		return &RateLimitError{
			Message:    fmt.Sprintf("Daily limit reached: at most %d posts per day", l.PostsPerDay),
			RetryAfter: StartOfUTCDay(now).Add(24 * time.Hour).Sub(now),
		}
	}
	if l.PostsPerHour > 0 && hourCount >= int64(l.PostsPerHour) {
		return &RateLimitError{
			Message:    fmt.Sprintf("Hourly limit reached: at most %d posts per hour", l.PostsPerHour),
			RetryAfter: oldestInHour.Add(time.Hour).Sub(now),
		}
	}
	return nil
}

// CheckCommentCooldown rejects a comment made within the cooldown of the
// author's previous one.
func CheckCommentCooldown(l Limits, lastCommentAt *time.Time, now time.Time) error {
	if lastCommentAt == nil || l.CommentCooldown <= 0 {
		return nil
	}
	remaining := lastCommentAt.Add(l.CommentCooldown).Sub(now)
	if remaining <= 0 {
		return nil
	}
	e := &RateLimitError{RetryAfter: remaining}
	e.Message = fmt.Sprintf("Wait %ds before commenting again", e.RetryAfterSeconds())
	return e
}
