// Package testutil starts throwaway Postgres instances for integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

// Postgres is a migrated, seeded database in a container that lives for the
// duration of the test.
type Postgres struct {
	DB  *gorm.DB
	DSN string
}

// NewPostgres skips under -short or when no container runtime is reachable.
func NewPostgres(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("sussurro"),
		postgres.WithUsername("sussurro"),
		postgres.WithPassword("sussurro"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedCategories(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &Postgres{DB: db, DSN: dsn}
}

// CreateUser inserts an account with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		ID:          uuid.New(),
		Email:       username + "@example.com",
		Username:    username,
		Password:    "not-a-real-hash",
		AvatarType:  "icon",
		AvatarValue: models.DefaultAvatar,
		Role:        "user",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreatePost inserts a visible post directly, bypassing quotas and filters.
func CreatePost(t *testing.T, db *gorm.DB, author models.User, title string, createdAt time.Time) models.Post {
	t.Helper()
	post := models.Post{
		ID:        uuid.New(),
		UserID:    author.ID,
		Title:     title,
		Content:   "conteúdo de teste suficiente",
		Category:  models.DefaultCategories[0].Name,
		PostType:  "text",
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}
