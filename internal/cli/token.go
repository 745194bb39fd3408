package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pet-medication-reminder/internal/config"
	"pet-medication-reminder/internal/server"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an operator token for the /trigger endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AdminJWTSecret == "" {
			return &config.ConfigurationError{Field: "ADMIN_JWT_SECRET", Reason: "not found in Docker secret or environment"}
		}
		tok, err := server.IssueToken(cfg.AdminJWTSecret, tokenSubject, tokenTTL, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "operator", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 365*24*time.Hour, "Token lifetime")
}
