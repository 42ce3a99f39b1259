package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/dtroode/authcore/database"
	"github.com/dtroode/authcore/internal/config"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending database migrations against DATABASE_DSN.`,
		RunE:  runMigrate,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE:  runMigrateStatus,
	})

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	cmd.Println("Running migrations...")
	if err := database.Migrate(cmd.Context(), cfg.Database.DSN); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	version, err := database.Status(cmd.Context(), cfg.Database.DSN)
	if err != nil {
		return oops.Code("MIGRATION_STATUS_FAILED").With("operation", "read schema version").Wrap(err)
	}

	cmd.Printf("Schema version: %d\n", version)
	return nil
}
