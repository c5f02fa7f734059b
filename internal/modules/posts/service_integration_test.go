package posts

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countWhere(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestPostsAgainstPostgres(t *testing.T) {
	pg := testutil.NewPostgres(t)
	db := pg.DB

	notifications := services.NewNotificationService(db)
	moderation := services.NewModerationService(db, notifications, nil, 5, nil)
	limits := Limits{PostsPerHour: 2, PostsPerDay: 20, CommentCooldown: time.Minute}
	postSvc := NewPostService(db, moderation, limits)
	reactions := NewReactionService(db, notifications)
	comments := NewCommentService(db, moderation, notifications, limits)

	author := testutil.CreateUser(t, db, "autora")
	reader := testutil.CreateUser(t, db, "leitor")

	input := PostInput{Title: "Meu segredo", Content: "Nunca contei isso para ninguém.", Category: "Confissão"}

	var post *FeedPost
	t.Run("create enforces the hourly quota", func(t *testing.T) {
		var err error
		post, err = postSvc.Create(author.ID, input)
		require.NoError(t, err)
		assert.Equal(t, "autora", post.Author.Username)

		_, err = postSvc.Create(author.ID, input)
		require.NoError(t, err)

		_, err = postSvc.Create(author.ID, input)
		var rl *RateLimitError
		require.True(t, errors.As(err, &rl), "got %v", err)
		assert.Greater(t, rl.RetryAfter, time.Duration(0))

		var fresh models.User
		require.NoError(t, db.First(&fresh, "id = ?", author.ID).Error)
		assert.Equal(t, 2, fresh.TotalPosts)
		assert.NotNil(t, fresh.LastPostAt)
	})

	t.Run("create rejects unknown category", func(t *testing.T) {
		bad := input
		bad.Category = "Inexistente"
		_, err := postSvc.Create(reader.ID, bad)
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	require.NotNil(t, post)

	t.Run("reactions keep like_count equal to the join table", func(t *testing.T) {
		assertConsistent := func(wantLikes int) {
			var p models.Post
			require.NoError(t, db.First(&p, "id = ?", post.ID).Error)
			assert.Equal(t, wantLikes, p.LikeCount)
			assert.Equal(t, int64(p.LikeCount), countWhere(t, db, &models.Reaction{}, "post_id = ?", post.ID))

			var a models.User
			require.NoError(t, db.First(&a, "id = ?", author.ID).Error)
			assert.Equal(t, wantLikes, a.TotalLikesReceived)
		}

		res, err := reactions.React(reader.ID, post.ID, models.ReactionLike)
		require.NoError(t, err)
		assert.Equal(t, models.ReactionLike, *res.Reaction)
		assert.Equal(t, 1, res.LikeCount)
		assertConsistent(1)

		res, err = reactions.React(reader.ID, post.ID, models.ReactionLove)
		require.NoError(t, err)
		assert.Equal(t, models.ReactionLove, *res.Reaction)
		assertConsistent(1)

		res, err = reactions.React(reader.ID, post.ID, models.ReactionLove)
		require.NoError(t, err)
		assert.Nil(t, res.Reaction)
		assertConsistent(0)

		_, err = reactions.React(reader.ID, post.ID, models.ReactionHaha)
		require.NoError(t, err)
		_, err = reactions.React(author.ID, post.ID, models.ReactionHaha)
		require.NoError(t, err)
		assertConsistent(2)

		summary, err := reactions.Summary(post.ID)
		require.NoError(t, err)
		require.Len(t, summary, 1)
		assert.Equal(t, ReactionCount{Type: models.ReactionHaha, Count: 2}, summary[0])

		res, err = reactions.Unreact(author.ID, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, res.LikeCount)
		assertConsistent(1)

		// Two reactions by the reader created notifications; the author's own did not.
		assert.Equal(t, int64(2), countWhere(t, db, &models.Notification{}, "recipient_id = ? AND type = ?", author.ID, models.NotifyLike))

		seen, err := postSvc.Get(reader.ID, post.ID)
		require.NoError(t, err)
		assert.True(t, seen.IsLiked)
		assert.Equal(t, models.ReactionHaha, *seen.UserReaction)
	})

	t.Run("comments respect the cooldown and counters", func(t *testing.T) {
		c, err := comments.Add(reader.ID, post.ID, "  Forte isso.  ")
		require.NoError(t, err)
		assert.Equal(t, "Forte isso.", c.Content)
		assert.Equal(t, "leitor", c.Author.Username)

		_, err = comments.Add(reader.ID, post.ID, "Outro comentário")
		var rl *RateLimitError
		require.True(t, errors.As(err, &rl), "got %v", err)

		like, err := comments.ToggleLike(author.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, CommentLikeResult{Liked: true, LikeCount: 1}, *like)

		page, err := comments.List(author.ID, post.ID, 1)
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.True(t, page.Data[0].IsLiked)
		assert.Nil(t, page.NextCursor)

		like, err = comments.ToggleLike(author.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, CommentLikeResult{Liked: false, LikeCount: 0}, *like)

		assert.ErrorIs(t, comments.Delete(author.ID, c.ID), ErrNotOwner)
		require.NoError(t, comments.Delete(reader.ID, c.ID))

		var p models.Post
		require.NoError(t, db.First(&p, "id = ?", post.ID).Error)
		assert.Equal(t, 0, p.CommentCount)
		assert.Equal(t, int64(1), countWhere(t, db, &models.Notification{}, "recipient_id = ? AND type = ?", author.ID, models.NotifyComment))
	})

	t.Run("feed hides blocked authors and removed posts", func(t *testing.T) {
		anon, err := postSvc.Feed(uuid.Nil, 1, "")
		require.NoError(t, err)
		assert.Len(t, anon.Data, 2)

		require.NoError(t, moderation.BlockUser(reader.ID, author.ID))
		blocked, err := postSvc.Feed(reader.ID, 1, "")
		require.NoError(t, err)
		assert.Empty(t, blocked.Data)
		require.NoError(t, moderation.UnblockUser(reader.ID, author.ID))

		assert.ErrorIs(t, postSvc.Delete(reader.ID, post.ID), ErrNotOwner)
		require.NoError(t, postSvc.Delete(author.ID, post.ID))

		_, err = postSvc.Get(reader.ID, post.ID)
		assert.ErrorIs(t, err, ErrPostNotFound)

		anon, err = postSvc.Feed(uuid.Nil, 1, "")
		require.NoError(t, err)
		assert.Len(t, anon.Data, 1)
	})

	t.Run("feed pages are newest first with a cursor only when full", func(t *testing.T) {
		bulk := testutil.CreateUser(t, db, "muitos")
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 12; i++ {
			testutil.CreatePost(t, db, bulk, "post em massa", base.Add(time.Duration(i)*time.Minute))
		}

		first, err := postSvc.Feed(uuid.Nil, 1, "")
		require.NoError(t, err)
		require.Len(t, first.Data, FeedPageSize)
		require.NotNil(t, first.NextCursor)
		assert.Equal(t, 2, *first.NextCursor)
		for i := 1; i < len(first.Data); i++ {
			assert.False(t, first.Data[i].CreatedAt.After(first.Data[i-1].CreatedAt))
		}

		second, err := postSvc.Feed(uuid.Nil, 2, "")
		require.NoError(t, err)
		assert.Len(t, second.Data, 3)
		assert.Nil(t, second.NextCursor)
	})

	t.Run("explore ignores posts older than a week", func(t *testing.T) {
		old := testutil.CreatePost(t, db, reader, "antigo e famoso", time.Now().Add(-8*24*time.Hour))
		require.NoError(t, db.Model(&old).Update("like_count", 999).Error)

		page, err := postSvc.Explore(uuid.Nil, 1)
		require.NoError(t, err)
		require.NotEmpty(t, page.Data)
		for _, p := range page.Data {
			assert.NotEqual(t, old.ID, p.ID)
		}
	})

	t.Run("huge page numbers return an empty page", func(t *testing.T) {
		page, err := postSvc.Explore(uuid.Nil, math.MaxInt)
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.Nil(t, page.NextCursor)

		feed, err := postSvc.Feed(uuid.Nil, math.MaxInt, "")
		require.NoError(t, err)
		assert.Empty(t, feed.Data)
		assert.Nil(t, feed.NextCursor)
	})

	t.Run("saving toggles and lists", func(t *testing.T) {
		var target models.Post
		require.NoError(t, db.Where("is_removed = false").First(&target).Error)

		saved, err := postSvc.ToggleSave(reader.ID, target.ID)
		require.NoError(t, err)
		assert.True(t, saved)

		page, err := postSvc.Saved(reader.ID, 1)
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.True(t, page.Data[0].IsSaved)

		saved, err = postSvc.ToggleSave(reader.ID, target.ID)
		require.NoError(t, err)
		assert.False(t, saved)

		_, err = postSvc.ToggleSave(reader.ID, uuid.New())
		assert.ErrorIs(t, err, ErrPostNotFound)
	})
}
