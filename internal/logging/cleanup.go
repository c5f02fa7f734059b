package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"gorm.io/gorm"
)

// Retention is how long system logs are kept.
const Retention = 30 * 24 * time.Hour

// PurgeOld deletes system logs older than retention.
func PurgeOld(db *gorm.DB, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup purges old system logs once a day until ctx is done.
func StartCleanup(ctx context.Context, db *gorm.DB) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := PurgeOld(db, Retention)
				if err != nil {
					slog.Error("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
