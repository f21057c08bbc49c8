package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/AsifaBeedi/jewel-site-booster/internal/config"
	"github.com/AsifaBeedi/jewel-site-booster/internal/database"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the installation",
	Long: `Run health checks on the installation.

Checks performed:
  - Configuration (database URL and driver)
  - Database connection
  - Database server version
  - Database migrations completed
  - Required tables exist

Example:
  booster doctor
  booster doctor --json`,
	RunE: runDoctor,
}

var errDoctorFailed = errors.New("one or more checks failed")

type CheckResult struct {
	Name       string `json:"name"`
	Pass       bool   `json:"pass"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

var requiredTables = []string{
	"page_visits",
	"click_events",
	"users",
	"user_sessions",
}

func checkConfiguration(cfg *config.Config) (string, CheckResult) {
	if cfg.DatabaseURL == "" {
		return "", CheckResult{
			Name:       "Configuration",
			Pass:       false,
			Error:      "DATABASE_URL not set",
			Suggestion: "Set DATABASE_URL, pass --database-url, or add database_url to booster.toml",
		}
	}
	driver, err := database.DetectDriver(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return "", CheckResult{
			Name:       "Configuration",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Set DATABASE_DRIVER to postgres or sqlite",
		}
	}
	return driver, CheckResult{Name: "Configuration", Pass: true, Details: driver}
}

// openDoctorDB uses lib/pq for PostgreSQL so pq.Array binds natively.
func openDoctorDB(driver, databaseURL string) (*sql.DB, error) {
	if driver == database.DriverPostgres {
		return sql.Open("postgres", database.NormalizeURL(driver, databaseURL))
	}
	return database.Open(driver, databaseURL)
}

func checkDatabaseConnection(db *sql.DB) CheckResult {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return CheckResult{
			Name:       "Database Connection",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Verify DATABASE_URL and ensure the database is running",
		}
	}
	return CheckResult{Name: "Database Connection", Pass: true}
}

func checkServerVersion(db *sql.DB, driver string) CheckResult {
	query := "SELECT sqlite_version()"
	name := "SQLite Version"
	if driver == database.DriverPostgres {
		query = "SHOW server_version"
		name = "PostgreSQL Version"
	}

	var version string
	if err := db.QueryRow(query).Scan(&version); err != nil {
		return CheckResult{Name: name, Pass: false, Error: err.Error()}
	}
	// e.g. "17.1 (Debian 17.1-1)"
	if fields := strings.Fields(version); len(fields) > 0 {
		version = fields[0]
	}
	return CheckResult{Name: name, Pass: true, Details: version}
}

func checkMigrations(driver, databaseURL string) CheckResult {
	version, dirty, err := database.GetMigrationVersion(driver, databaseURL)
	if err != nil {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Run migrations with: booster migrate up",
		}
	}

	if version != database.LatestVersion {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      fmt.Sprintf("Migration version %d, expected %d", version, database.LatestVersion),
			Suggestion: "Run migrations with: booster migrate up",
		}
	}

	if dirty {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      "Migration state is dirty",
			Suggestion: "Fix dirty migration state, may need manual intervention",
		}
	}

	return CheckResult{Name: "Database Migrations", Pass: true, Details: fmt.Sprintf("v%d", version)}
}

func checkTables(db *sql.DB, driver string) CheckResult {
	var (
		rows *sql.Rows
		err  error
	)
	if driver == database.DriverPostgres {
		rows, err = db.Query(`
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = ANY($1)
		`, pq.Array(requiredTables))
	} else {
		rows, err = db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	}
	if err != nil {
		return CheckResult{Name: "Required Tables", Pass: false, Error: err.Error()}
	}
	defer func() { _ = rows.Close() }()

	found := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return CheckResult{Name: "Required Tables", Pass: false, Error: err.Error()}
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return CheckResult{Name: "Required Tables", Pass: false, Error: err.Error()}
	}

	var missing []string
	for _, table := range requiredTables {
		if !found[table] {
			missing = append(missing, table)
		}
	}

	if len(missing) > 0 {
		return CheckResult{
			Name:       "Required Tables",
			Pass:       false,
			Error:      fmt.Sprintf("Missing %d tables: %s", len(missing), strings.Join(missing, ", ")),
			Suggestion: "Run migrations to create missing tables",
		}
	}

	return CheckResult{
		Name:    "Required Tables",
		Pass:    true,
		Details: fmt.Sprintf("%d/%d tables found", len(requiredTables), len(requiredTables)),
	}
}

func collectDoctorResults(cfg *config.Config) []CheckResult {
	driver, result := checkConfiguration(cfg)
	results := []CheckResult{result}
	if !result.Pass {
		return results
	}

	db, err := openDoctorDB(driver, cfg.DatabaseURL)
	if err != nil {
		return append(results, CheckResult{
			Name:       "Database Connection",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Verify DATABASE_URL is valid",
		})
	}
	defer func() { _ = db.Close() }()

	connection := checkDatabaseConnection(db)
	results = append(results, connection)
	if !connection.Pass {
		return results
	}

	results = append(results, checkServerVersion(db, driver))
	results = append(results, checkMigrations(driver, cfg.DatabaseURL))
	results = append(results, checkTables(db, driver))
	return results
}

func runDoctor(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✗ Configuration Error: %v\n", err)
		return err
	}

	results := collectDoctorResults(cfg)

	if jsonOutput {
		if err := outputDoctorJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		outputDoctorHuman(cmd.OutOrStdout(), results)
	}

	for _, r := range results {
		if !r.Pass {
			return errDoctorFailed
		}
	}
	return nil
}

func outputDoctorHuman(w io.Writer, results []CheckResult) {
	_, _ = fmt.Fprintln(w, "\nBooster Health Check")

	passed := 0
	for _, r := range results {
		icon := "✓"
		if r.Pass {
			passed++
		} else {
			icon = "✗"
		}

		_, _ = fmt.Fprintf(w, "%s %s", icon, r.Name)
		if r.Details != "" {
			_, _ = fmt.Fprintf(w, " (%s)", r.Details)
		}
		_, _ = fmt.Fprintln(w)

		if !r.Pass {
			if r.Error != "" {
				_, _ = fmt.Fprintf(w, "  Error: %s\n", r.Error)
			}
			if r.Suggestion != "" {
				_, _ = fmt.Fprintf(w, "  Hint: %s\n", r.Suggestion)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\n%d/%d checks passed\n\n", passed, len(results))
}

func outputDoctorJSON(w io.Writer, results []CheckResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func init() {
	doctorCmd.Flags().Bool("json", false, "Output results as JSON")
	RootCmd.AddCommand(doctorCmd)
}
