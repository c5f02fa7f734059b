package database

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	db, err := Open(cfg.DSN())
	if err != nil {
		return err
	}
	DB = db
	slog.Info("database connected")
	return nil
}

// Open dials Postgres and configures the pool.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// Migrate runs AutoMigrate for every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		slog.Warn("pgcrypto extension unavailable", "error", err)
	}
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Post{},
		&models.Reaction{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Follow{},
		&models.SavedPost{},
		&models.Block{},
		&models.Report{},
		&models.Notification{},
		&models.Setting{},
		&models.SystemLog{},
	)
}

// MigrateModels runs AutoMigrate for module-owned models.
func MigrateModels(db *gorm.DB, modelList []interface{}) error {
	if len(modelList) == 0 {
		return nil
	}
	return db.AutoMigrate(modelList...)
}

// SeedCategories inserts the default categories that are not present yet.
func SeedCategories(db *gorm.DB) error {
	for _, c := range models.DefaultCategories {
		var existing models.Category
		err := db.Where("name = ?", c.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		cat := c
		cat.IsActive = true
		if err := db.Create(&cat).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}
	return nil
}

func Ping() error {
	if DB == nil {
		return errors.New("database not connected")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
