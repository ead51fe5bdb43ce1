package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"horizon/internal/infrastructure/postgres"
	"horizon/internal/shared/config"
)

var flagMigrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&flagMigrateStatus, "status", false, "Only print the applied schema version")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	connStr := cfg.Database.ConnectionString()

	if !flagMigrateStatus {
		if err := postgres.RunMigrations(connStr); err != nil {
			return err
		}
	}

	version, dirty, err := postgres.MigrationVersion(connStr)
	if err != nil {
		return err
	}

	status := okStyle.Render("clean")
	if dirty {
		status = warnStyle.Render("dirty")
	}
	fmt.Printf("  Schema version %d (%s)\n", version, status)
	return nil
}
