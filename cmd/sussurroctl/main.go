// Command sussurroctl runs maintenance tasks against the Sussurro database.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sussurroctl",
		Short:         "Maintenance commands for the Sussurro backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newMigrateCmd(),
		newBattleCmd(),
		newUserCmd(),
		newLogsCmd(),
	)
	return root
}

// connect loads config from the environment and opens the database.
func connect() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	logging.Setup(cfg.AppEnv)
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
