// Package logging configures slog and persists error logs to Postgres.
package logging

import (
	"log/slog"
	"os"

	"gorm.io/gorm"
)

// Setup installs a JSON stdout logger as the slog default. Development
// builds log at debug level.
func Setup(env string) slog.Handler {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return handler
}

// AttachDatabase tees ERROR+ records from base into system_logs. Stop the
// returned handler on shutdown to flush what is buffered.
func AttachDatabase(base slog.Handler, db *gorm.DB) *PGHandler {
	pg := NewPGHandler(db)
	slog.SetDefault(slog.New(NewMultiHandler(base, pg)))
	return pg
}
