package social

import (
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFollowRejectsSelf(t *testing.T) {
	svc := NewSocialService(nil, nil, nil)
	id := uuid.New()
	_, err := svc.ToggleFollow(id, id)
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestFollowHandlerValidation(t *testing.T) {
	h := NewSocialHandler(NewSocialService(nil, nil, nil))
	me := uuid.New()

	app := fiber.New()
	app.Post("/anon/:id/follow", h.ToggleFollow)
	app.Post("/users/:id/follow", func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"sub": me.String()}})
		return c.Next()
	}, h.ToggleFollow)

	resp, err := app.Test(httptest.NewRequest("POST", "/anon/"+uuid.NewString()+"/follow", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/users/nope/follow", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/users/"+me.String()+"/follow", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSocialAgainstPostgres(t *testing.T) {
	pg := testutil.NewPostgres(t)
	db := pg.DB
	svc := NewSocialService(db, services.NewAuthService(db, nil), services.NewNotificationService(db))

	alice := testutil.CreateUser(t, db, "alice_anon")
	bob := testutil.CreateUser(t, db, "bob_anon")

	counts := func(id uuid.UUID) (int, int) {
		var u models.User
		require.NoError(t, db.First(&u, "id = ?", id).Error)
		return u.FollowerCount, u.FollowingCount
	}

	following, err := svc.ToggleFollow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, _ := counts(bob.ID)
	_, followingCount := counts(alice.ID)
	assert.Equal(t, 1, followers)
	assert.Equal(t, 1, followingCount)

	profile, err := svc.Profile(alice.ID, "BOB_ANON")
	require.NoError(t, err)
	assert.True(t, profile.IsFollowing)
	assert.False(t, profile.IsSelf)

	list, err := svc.Followers("bob_anon", 1)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "alice_anon", list.Data[0].Username)
	assert.Nil(t, list.NextCursor)

	list, err = svc.Following("alice_anon", 1)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, bob.ID, list.Data[0].ID)

	list, err = svc.Following("alice_anon", math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, list.Data)
	assert.Nil(t, list.NextCursor)

	var notes int64
	db.Model(&models.Notification{}).Where("recipient_id = ? AND type = ?", bob.ID, models.NotifyFollow).Count(&notes)
	assert.Equal(t, int64(1), notes)

	following, err = svc.ToggleFollow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
	followers, _ = counts(bob.ID)
	_, followingCount = counts(alice.ID)
	assert.Equal(t, 0, followers)
	assert.Equal(t, 0, followingCount)

	_, err = svc.ToggleFollow(alice.ID, uuid.New())
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	t.Run("update profile", func(t *testing.T) {
		bio := "  só observando  "
		avatar := "🦉"
		name := "alice_nova"
		p, err := svc.UpdateProfile(alice.ID, UpdateProfileRequest{Username: &name, Bio: &bio, Avatar: &avatar})
		require.NoError(t, err)
		assert.Equal(t, "alice_nova", p.Username)
		assert.Equal(t, "só observando", p.Bio)
		assert.Equal(t, "🦉", p.AvatarValue)
		assert.True(t, p.IsSelf)

		taken := "BOB_ANON"
		_, err = svc.UpdateProfile(alice.ID, UpdateProfileRequest{Username: &taken})
		assert.ErrorIs(t, err, services.ErrUsernameTaken)

		long := strings.Repeat("x", services.MaxBioLength+1)
		_, err = svc.UpdateProfile(alice.ID, UpdateProfileRequest{Bio: &long})
		assert.ErrorIs(t, err, services.ErrBioTooLong)
	})
}
