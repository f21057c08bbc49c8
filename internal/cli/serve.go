package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	fiberzap "github.com/gofiber/contrib/v3/zap"
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/AsifaBeedi/jewel-site-booster/internal/analytics"
	"github.com/AsifaBeedi/jewel-site-booster/internal/config"
	"github.com/AsifaBeedi/jewel-site-booster/internal/database"
	"github.com/AsifaBeedi/jewel-site-booster/internal/handlers"
	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
	"github.com/AsifaBeedi/jewel-site-booster/internal/metrics"
	"github.com/AsifaBeedi/jewel-site-booster/internal/middleware"
	"github.com/AsifaBeedi/jewel-site-booster/internal/store"
)

const appName = "Jewel Site Booster"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analytics server",
	Long: `Start the analytics server.

The serve command applies pending migrations, then serves the tracking
endpoint, the dashboard and its API. It requires a database URL.

Environment variables:
  DATABASE_URL        postgres://... or sqlite://path/to/booster.db (required)
  DATABASE_DRIVER     postgres or sqlite (default: detected from the URL)
  PORT                Server port (default: 3000)
  SECURE_COOKIES      Secure, SameSite=None dashboard cookies (default: true)
  TRACK_ALLOW_ORIGIN  Access-Control-Allow-Origin for /track-event (default: *)
  METRICS_ENABLED     Serve Prometheus metrics on /metrics (default: true)

Example:
  DATABASE_URL="sqlite://booster.db" booster serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveAnalytics(cmd.Context())
	},
}

// serveAnalytics runs the server until ctx is cancelled or a signal arrives
func serveAnalytics(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	driver, err := database.DetectDriver(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	logging.L().Info("running database migrations", "driver", driver)
	if err := database.RunMigrations(driver, cfg.DatabaseURL); err != nil {
		logging.L().Warn("migration warning", "error", err)
	} else {
		logging.L().Info("migrations completed")
	}

	if err := database.Connect(driver, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logging.L().Warn("error closing database", "error", err)
		}
	}()

	st := store.New(database.DB)
	middleware.SetSessionValidator(middleware.StoreValidator(st))

	janitor := database.NewSessionJanitor()
	janitor.Start()
	defer janitor.Stop()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	app := newApp(cfg, st, m)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenConfig := createListenConfig()
	listenConfig.GracefulContext = ctx

	logging.L().Info("booster starting",
		"port", cfg.Port,
		"driver", driver,
		"version", Version,
		"metrics", cfg.MetricsEnabled,
	)
	if err := app.Listen(":"+cfg.Port, listenConfig); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	logging.L().Info("booster stopped")
	return nil
}

// newApp wires middleware and routes. m may be nil.
func newApp(cfg *config.Config, st *store.Store, m *metrics.Metrics) *fiber.App {
	app := fiber.New(createFiberConfig(appName, handlers.NewViews()))

	app.Use(recoverer.New())
	app.Use(fiberzap.New(fiberzap.Config{
		Logger:   logging.Zap(),
		SkipURIs: []string{"/up", "/health"},
	}))
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Booster-Version", Version)
		return c.Next()
	})

	handlers.Register(app, handlers.Routes{
		Tracking:    handlers.NewTracking(st, m),
		Reports:     handlers.NewReports(analytics.NewDashboard(st), st, Version),
		Auth:        handlers.NewAuth(st, cfg.SecureCookies),
		Metrics:     m,
		AllowOrigin: cfg.TrackAllowOrigin,
		Version:     Version,
		Ping:        st.DB().PingContext,
	})
	return app
}
