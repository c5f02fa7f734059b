package arena

import (
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBattlesAgainstPostgres(t *testing.T) {
	pg := testutil.NewPostgres(t)
	db := pg.DB
	require.NoError(t, database.MigrateModels(db, New().Models()))

	svc := NewBattleService(db)
	svc.perm = inOrder

	viewer := testutil.CreateUser(t, db, "votante")

	t.Run("no battle without two authors", func(t *testing.T) {
		solo := testutil.CreateUser(t, db, "sozinho")
		testutil.CreatePost(t, db, solo, "um", time.Now().Add(-time.Hour))
		testutil.CreatePost(t, db, solo, "dois", time.Now().Add(-2*time.Hour))

		_, err := svc.GetOrCreateDaily(viewer.ID, "")
		assert.ErrorIs(t, err, ErrNoBattle)
	})

	other := testutil.CreateUser(t, db, "outro_autor")
	testutil.CreatePost(t, db, other, "três", time.Now().Add(-3*time.Hour))

	var first *BattleView
	t.Run("concurrent callers converge", func(t *testing.T) {
		var wg sync.WaitGroup
		ids := make([]uuid.UUID, 8)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v, err := svc.GetOrCreateDaily(uuid.Nil, "")
				if assert.NoError(t, err) {
					ids[i] = v.ID
				}
			}(i)
		}
		wg.Wait()
		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}

		var count int64
		db.Model(&Battle{}).Count(&count)
		assert.EqualValues(t, 1, count)

		var err error
		first, err = svc.GetOrCreateDaily(viewer.ID, "")
		require.NoError(t, err)
		require.NotNil(t, first.PostA)
		require.NotNil(t, first.PostB)
		assert.NotEqual(t, first.PostA.Author.Username, first.PostB.Author.Username)
		assert.True(t, first.IsOpen)
		assert.Nil(t, first.UserVote)
	})

	t.Run("vote once", func(t *testing.T) {
		_, err := svc.Vote(viewer.ID, first.ID, uuid.New())
		assert.ErrorIs(t, err, ErrInvalidChoice)

		v, err := svc.Vote(viewer.ID, first.ID, first.PostA.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, v.VotesA)
		assert.Equal(t, 100, v.PercentA)
		assert.Equal(t, 0, v.PercentB)
		require.NotNil(t, v.UserVote)
		assert.Equal(t, first.PostA.ID, *v.UserVote)

		_, err = svc.Vote(viewer.ID, first.ID, first.PostB.ID)
		assert.ErrorIs(t, err, ErrAlreadyVoted)

		for i := 0; i < 2; i++ {
			u := testutil.CreateUser(t, db, "eleitor_"+string(rune('a'+i)))
			_, err := svc.Vote(u.ID, first.ID, first.PostB.ID)
			require.NoError(t, err)
		}
		v, err = svc.GetOrCreateDaily(viewer.ID, "")
		require.NoError(t, err)
		assert.Equal(t, 3, v.TotalVotes)
		assert.Equal(t, 33, v.PercentA)
		assert.Equal(t, 67, v.PercentB)
	})

	t.Run("past battles are closed and listed", func(t *testing.T) {
		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		date, _ := time.Parse(dateLayout, DayKey(yesterday))
		old := Battle{
			ID:         uuid.New(),
			BattleDate: date,
			PostAID:    first.PostA.ID,
			PostBID:    first.PostB.ID,
		}
		require.NoError(t, db.Create(&old).Error)

		_, err := svc.Vote(viewer.ID, old.ID, first.PostA.ID)
		assert.ErrorIs(t, err, ErrBattleClosed)

		_, err = svc.Vote(viewer.ID, uuid.New(), first.PostA.ID)
		assert.ErrorIs(t, err, ErrBattleNotFound)

		history, err := svc.History(viewer.ID, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, old.ID, history[0].ID)
		assert.False(t, history[0].IsOpen)
	})

	t.Run("removed posts are blanked", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Post{}).Where("id = ?", first.PostA.ID).Update("is_removed", true).Error)
		v, err := svc.GetOrCreateDaily(viewer.ID, "")
		require.NoError(t, err)
		assert.True(t, v.PostA.Removed)
		assert.Empty(t, v.PostA.Title)
	})
}
