package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AsifaBeedi/jewel-site-booster/internal/config"
	"github.com/AsifaBeedi/jewel-site-booster/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, driver, err := migrationTarget()
		if err != nil {
			return err
		}
		if err := database.RunMigrations(driver, cfg.DatabaseURL); err != nil {
			return err
		}
		version, _, err := database.GetMigrationVersion(driver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Schema at version %d (%s)\n", version, driver)
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, driver, err := migrationTarget()
		if err != nil {
			return err
		}
		version, dirty, err := database.GetMigrationVersion(driver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		state := "clean"
		if dirty {
			state = "dirty"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d (%s)\n", version, state)
		return nil
	},
}

func migrationTarget() (*config.Config, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, "", fmt.Errorf("DATABASE_URL is required")
	}
	driver, err := database.DetectDriver(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, "", err
	}
	return cfg, driver, nil
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	RootCmd.AddCommand(migrateCmd)
}
