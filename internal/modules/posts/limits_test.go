package posts

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = Limits{PostsPerHour: 5, PostsPerDay: 20, CommentCooldown: 15 * time.Second}

func TestCheckPostQuota(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

	assert.NoError(t, CheckPostQuota(testLimits, 4, 19, now.Add(-50*time.Minute), now))

	err := CheckPostQuota(testLimits, 5, 5, now.Add(-50*time.Minute), now)
	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Contains(t, rl.Message, "5 posts per hour")
	assert.Equal(t, 10*time.Minute, rl.RetryAfter)

	err = CheckPostQuota(testLimits, 0, 20, now, now)
	require.True(t, errors.As(err, &rl))
	assert.Contains(t, rl.Message, "20 posts per day")
	assert.Equal(t, 5*time.Hour+30*time.Minute, rl.RetryAfter)
}

func TestCheckPostQuotaDayWinsOverHour(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	err := CheckPostQuota(testLimits, 5, 20, now.Add(-10*time.Minute), now)
	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, time.Hour, rl.RetryAfter)
}

func TestCheckPostQuotaDisabled(t *testing.T) {
	assert.NoError(t, CheckPostQuota(Limits{}, 100, 100, time.Now(), time.Now()))
}

func TestCheckCommentCooldown(t *testing.T) {
	now := time.Now()

	assert.NoError(t, CheckCommentCooldown(testLimits, nil, now))

	old := now.Add(-16 * time.Second)
	assert.NoError(t, CheckCommentCooldown(testLimits, &old, now))

	recent := now.Add(-10*time.Second - 500*time.Millisecond)
	err := CheckCommentCooldown(testLimits, &recent, now)
	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 5, rl.RetryAfterSeconds())
	assert.Equal(t, "Wait 5s before commenting again", rl.Message)
}

func TestStartOfUTCDay(t *testing.T) {
	sp := time.FixedZone("BRT", -3*60*60)
	local := time.Date(2026, 3, 10, 22, 0, 0, 0, sp)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), StartOfUTCDay(local))
}

func TestRetryAfterSecondsFloor(t *testing.T) {
	assert.Equal(t, 1, (&RateLimitError{RetryAfter: 0}).RetryAfterSeconds())
	assert.Equal(t, 2, (&RateLimitError{RetryAfter: 1100 * time.Millisecond}).RetryAfterSeconds())
}
