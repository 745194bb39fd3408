// Package cli implements the bot's commands.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pet-medication-reminder/internal/config"
	"pet-medication-reminder/internal/observability"
)

var (
	dbPath  string
	backend string

	cfg *config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:          "pet-medication-reminder",
	Short:        "Chat bot that reminds owners to give their dog its medication",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load() // TELEGRAM_BOT_TOKEN etc.

		c, err := config.Load()
		if err != nil {
			return err
		}
		if dbPath != "" {
			c.DBPath = dbPath
		}
		if backend != "" {
			c.StorageBackend = backend
		}
		cfg = c
		observability.Init(os.Stdout, cfg.LogLevel)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite path (default: $DB_PATH or data/reminder.db)")
	RootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Storage backend: sqlite, postgres or memory (default: $STORAGE_BACKEND)")

	RootCmd.AddCommand(serveCmd, sweepCmd, tokenCmd, subscribersCmd, statusCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
