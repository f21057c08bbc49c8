package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB is the process-wide connection pool, set by Connect.
var DB *sql.DB

// Driver is the dialect DB was opened with.
var Driver string

// DetectDriver picks a driver for databaseURL unless explicit is set.
func DetectDriver(explicit, databaseURL string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case DriverPostgres, "postgresql", "pgx":
		return DriverPostgres, nil
	case DriverSQLite, "sqlite3":
		return DriverSQLite, nil
	case "":
	default:
		return "", fmt.Errorf("unsupported database driver %q", explicit)
	}

	lower := strings.ToLower(databaseURL)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"),
		strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"):
		return DriverSQLite, nil
	case databaseURL == "":
		return "", fmt.Errorf("DATABASE_URL not set")
	default:
		return "", fmt.Errorf("cannot detect database driver from %q", redact(databaseURL))
	}
}

// NormalizeURL returns the form of databaseURL that both the SQL driver
// helpers and the migrator understand. SQLite paths gain a sqlite:// prefix.
func NormalizeURL(driver, databaseURL string) string {
	if driver != DriverSQLite {
		return databaseURL
	}
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return databaseURL
	case strings.HasPrefix(databaseURL, "file:"):
		return "sqlite://" + strings.TrimPrefix(databaseURL, "file:")
	default:
		return "sqlite://" + databaseURL
	}
}

// Open opens and pings a pool for the given driver.
func Open(driver, databaseURL string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverPostgres:
		db, err = sql.Open("pgx", databaseURL)
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(30 * time.Minute)
		}
	case DriverSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(databaseURL))
		if err == nil {
			// One writer at a time; avoids SQLITE_BUSY under concurrent ingest.
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Connect opens the process-wide pool.
func Connect(driver, databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	db, err := Open(driver, NormalizeURL(driver, databaseURL))
	if err != nil {
		return err
	}
	DB = db
	Driver = driver
	return nil
}

// Close closes the process-wide pool if it is open.
func Close() error {
	if DB == nil {
		return nil
	}
	err := DB.Close()
	DB = nil
	return err
}

func sqliteDSN(databaseURL string) string {
	dsn := strings.TrimPrefix(NormalizeURL(DriverSQLite, databaseURL), "sqlite://")
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
}

func redact(databaseURL string) string {
	if i := strings.Index(databaseURL, "@"); i >= 0 {
		if j := strings.Index(databaseURL, "://"); j >= 0 && j < i {
			return databaseURL[:j+3] + "***" + databaseURL[i:]
		}
	}
	return databaseURL
}
