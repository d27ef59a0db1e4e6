package command

// root.go defines the root command of yamdb-admin, the operator tool that talks to the
// database directly.

import (
	"fmt"
	"log/slog"
	"os"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logging"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "yamdb-admin",
	Short: "yamdb-admin - YaMDb administration tool",
	Long: `yamdb-admin runs maintenance tasks against the YaMDb database:
- create or update the schema
- create superusers
- change user roles

Configuration comes from the same environment (and .env file) as the API server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB loads config and connects. JWT_SECRET is not needed by admin commands.
func openDB() (*gorm.DB, *slog.Logger, error) {
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "unused-by-yamdb-admin")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, logger, nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createSuperuserCmd)
	rootCmd.AddCommand(setRoleCmd)
}
