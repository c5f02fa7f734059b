package main

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/alerts"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/modules/arena"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and seed defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := connect()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := database.MigrateModels(db, arena.New().Models()); err != nil {
				return fmt.Errorf("migrate arena: %w", err)
			}
			if err := database.SeedCategories(db); err != nil {
				return err
			}
			if err := handlers.NewRemoteConfigHandler(db).SeedDefaults(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newBattleCmd() *cobra.Command {
	battle := &cobra.Command{
		Use:   "battle",
		Short: "Daily battle tasks",
	}

	var category string
	today := &cobra.Command{
		Use:   "today",
		Short: "Draw today's battle if it does not exist and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := connect()
			if err != nil {
				return err
			}
			view, err := arena.NewBattleService(db).GetOrCreateDaily(uuid.Nil, category)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}
	today.Flags().StringVar(&category, "category", "", "category name; empty draws from all categories")

	battle.AddCommand(today)
	return battle
}

func newUserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Account moderation",
	}

	var reason string
	ban := &cobra.Command{
		Use:   "ban <username>",
		Short: "Ban a user and revoke their sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setBan(cmd, args[0], true, reason)
		},
	}
	ban.Flags().StringVar(&reason, "reason", "", "reason shown to the user")

	unban := &cobra.Command{
		Use:   "unban <username>",
		Short: "Lift a ban",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setBan(cmd, args[0], false, "")
		},
	}

	user.AddCommand(ban, unban)
	return user
}

func setBan(cmd *cobra.Command, username string, banned bool, reason string) error {
	cfg, db, err := connect()
	if err != nil {
		return err
	}
	moderation := services.NewModerationService(db, services.NewNotificationService(db), alerts.New(cfg),
		cfg.ReportAlertThreshold, cfg.BannedWords)

	target, err := moderation.FindUserByUsername(username)
	if err != nil {
		return fmt.Errorf("%s: %w", username, err)
	}
	updated, err := moderation.SetBan(target.ID, banned, reason)
	if err != nil {
		return err
	}

	state := "unbanned"
	if updated.IsBanned {
		state = "banned"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", updated.Username, state)
	return nil
}

func newLogsCmd() *cobra.Command {
	logs := &cobra.Command{
		Use:   "logs",
		Short: "System log maintenance",
	}

	var days int
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete system logs older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			_, db, err := connect()
			if err != nil {
				return err
			}
			deleted, err := logging.PurgeOld(db, time.Duration(days)*24*time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d log entries\n", deleted)
			return nil
		},
	}
	cleanup.Flags().IntVar(&days, "days", int(logging.Retention/(24*time.Hour)), "keep logs newer than this many days")

	logs.AddCommand(cleanup)
	return logs
}
