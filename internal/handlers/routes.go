package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/AsifaBeedi/jewel-site-booster/internal/metrics"
	"github.com/AsifaBeedi/jewel-site-booster/internal/middleware"
)

// Routes bundles everything the HTTP surface is built from. Metrics may be
// nil, in which case /metrics is not mounted.
type Routes struct {
	Tracking    *Tracking
	Reports     *Reports
	Auth        *Auth
	Metrics     *metrics.Metrics
	AllowOrigin string
	Version     string
	Ping        Pinger
}

// Register mounts every route on app.
func Register(app *fiber.App, r Routes) {
	app.Get("/health", HandleHealth)
	app.Get("/up", HandleUp(r.Ping))
	app.Get("/api/version", HandleVersion(r.Version))

	// Public ingestion endpoint
	track := middleware.TrackCORS(r.AllowOrigin)
	app.Options("/track-event", track, HandleTrackPreflight)
	app.Post("/track-event", track, r.Tracking.HandleTrackEvent)

	// Auth
	app.Get("/login", HandleLoginPage)
	app.Post("/api/auth/login", r.Auth.HandleLogin)
	app.Post("/api/auth/logout", middleware.Auth, r.Auth.HandleLogout)
	app.Get("/api/auth/me", middleware.Auth, r.Auth.HandleMe)

	// Dashboard
	app.Get("/", func(c fiber.Ctx) error {
		return c.Redirect().Status(fiber.StatusFound).To("/analytics")
	})
	app.Get("/analytics", middleware.AuthWithRedirect, r.Reports.HandleDashboardPage)
	app.Get("/api/analytics/summary", middleware.Auth, r.Reports.HandleSummary)
	app.Get("/api/analytics/export", middleware.Auth, r.Reports.HandleExport)

	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.Metrics.Handler()))
	}
}
