package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AsifaBeedi/jewel-site-booster/internal/config"
	"github.com/AsifaBeedi/jewel-site-booster/internal/database"
	"github.com/AsifaBeedi/jewel-site-booster/internal/store"
)

var Version string

var (
	flagDatabaseURL string
	flagPort        string
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:   "booster",
	Short: "First-party click and visit analytics",
	Long: `Jewel Site Booster - first-party analytics for a storefront.

Records page visits and button clicks with their campaign attribution,
and serves an authenticated dashboard with totals, top buttons, top
sources and a CSV export.`,
	Version:      Version,
	SilenceUsage: true,
	// Default to serve command if no subcommand provided
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return serveAnalytics(cmd.Context())
		}
		return cmd.Help()
	},
}

// Execute is called by main
func Execute(version string) error {
	Version = version
	RootCmd.Version = version
	return RootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithOverrides(flagDatabaseURL, flagPort)
}

// connectDatabase loads config, resolves the driver and opens the shared
// connection. Callers defer database.Close.
func connectDatabase() (*config.Config, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	driver, err := database.DetectDriver(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, "", err
	}
	if err := database.Connect(driver, cfg.DatabaseURL); err != nil {
		return nil, "", fmt.Errorf("database connection failed: %w", err)
	}
	return cfg, driver, nil
}

// openStore is connectDatabase for commands that only need the store.
func openStore() (*store.Store, func(), error) {
	if _, _, err := connectDatabase(); err != nil {
		return nil, nil, err
	}
	return store.New(database.DB), func() { _ = database.Close() }, nil
}

func init() {
	RootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", "", "Database URL (overrides config and DATABASE_URL)")
	RootCmd.PersistentFlags().StringVar(&flagPort, "port", "", "Server port (overrides config and PORT)")

	// Add subcommands; the operator commands register in their own files
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(exportCmd)

	setupSelfUpgrade()
}
