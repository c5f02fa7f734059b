package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/alerts"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/modules/arena"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/modules/posts"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/modules/social"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()
	stdout := logging.Setup(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	db := database.DB

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := database.SeedCategories(db); err != nil {
		slog.Error("category seed failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records also go to system_logs, purged after 30 days.
	pgLogHandler := logging.AttachDatabase(stdout, db)
	logging.StartCleanup(ctx, db)

	// Services
	notificationService := services.NewNotificationService(db)
	authService := services.NewAuthService(db, cfg)
	moderationService := services.NewModerationService(db, notificationService, alerts.New(cfg),
		cfg.ReportAlertThreshold, cfg.BannedWords)

	// Realtime: LISTEN on a dedicated connection and fan out to SSE clients.
	hub := realtime.NewHub()
	listener := realtime.NewListener(cfg.DSN(), services.NotificationChannel, hub)
	go listener.Run(ctx)

	mods := []modules.Module{
		posts.New(moderationService, notificationService),
		social.New(authService, notificationService),
		arena.New(),
	}
	for _, m := range mods {
		if models := m.Models(); len(models) > 0 {
			if err := database.MigrateModels(db, models); err != nil {
				slog.Error("module migration failed", "module", m.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("module migrated", "module", m.ID(), "models", len(models))
		}
	}

	configHandler := handlers.NewRemoteConfigHandler(db)
	if err := configHandler.SeedDefaults(); err != nil {
		slog.Error("settings seed failed", "error", err)
	}

	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Health:        handlers.NewHealthHandler(hub),
		Moderation:    handlers.NewModerationHandler(moderationService),
		Notifications: handlers.NewNotificationHandler(notificationService, hub),
		Legal:         handlers.NewLegalHandler(cfg.AppName),
		Config:        configHandler,
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CrossOrigin(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, db, h, mods)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	// Open SSE streams would hold shutdown until their clients leave.
	hub.CloseAll()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only client errors expose their message.
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID))
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
