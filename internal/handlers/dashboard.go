package handlers

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/AsifaBeedi/jewel-site-booster/internal/analytics"
	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
	"github.com/AsifaBeedi/jewel-site-booster/internal/middleware"
)

const (
	dashboardTitle = "Jewel Site Booster Analytics"
	staleNotice    = "Failed to load analytics data. Showing the last available numbers."
)

// SummaryResponse is the JSON body of GET /api/analytics/summary.
type SummaryResponse struct {
	analytics.Summary
	Stale  bool   `json:"stale"`
	Notice string `json:"notice,omitempty"`
}

// Reports serves the dashboard page, its JSON summary and the CSV export.
type Reports struct {
	board   *analytics.Dashboard
	exports analytics.ExportReader
	version string
	now     func() time.Time
}

// NewReports returns the dashboard handlers.
func NewReports(board *analytics.Dashboard, exports analytics.ExportReader, version string) *Reports {
	return &Reports{board: board, exports: exports, version: version, now: time.Now}
}

// refresh never fails: a read error (already logged by the dashboard)
// becomes a notice over the last good data.
func (r *Reports) refresh(c fiber.Ctx) (analytics.Summary, string) {
	summary, err := r.board.Refresh(c.Context())
	if err != nil {
		return summary, staleNotice
	}
	return summary, ""
}

// HandleSummary returns the aggregated dashboard numbers.
// GET /api/analytics/summary
func (r *Reports) HandleSummary(c fiber.Ctx) error {
	summary, notice := r.refresh(c)
	return c.JSON(SummaryResponse{
		Summary: summary,
		Stale:   notice != "",
		Notice:  notice,
	})
}

// HandleDashboardPage renders the dashboard UI
func (r *Reports) HandleDashboardPage(c fiber.Ctx) error {
	summary, notice := r.refresh(c)

	username := ""
	if user := middleware.GetUser(c); user != nil {
		username = user.Username
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Render("dashboard", fiber.Map{
		"Title":    dashboardTitle,
		"Summary":  summary,
		"Notice":   notice,
		"Username": username,
		"Version":  r.version,
	})
}

// HandleExport downloads every visit and click as CSV.
// GET /api/analytics/export
func (r *Reports) HandleExport(c fiber.Ctx) error {
	var buf bytes.Buffer
	if err := analytics.Export(c.Context(), r.exports, &buf); err != nil {
		logging.L().Error("failed to export analytics data", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to export analytics data")
	}

	c.Attachment(analytics.ExportFilename(r.now()))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

// HandleLoginPage renders the sign-in form.
func HandleLoginPage(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Render("login", fiber.Map{
		"Title": dashboardTitle,
	})
}
