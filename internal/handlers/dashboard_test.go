package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsifaBeedi/jewel-site-booster/internal/analytics"
	"github.com/AsifaBeedi/jewel-site-booster/internal/middleware"
	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

func sampleReader() *fakeReader {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return &fakeReader{
		visits: []models.PageVisit{
			{ID: 2, PagePath: "/shop", Attribution: models.Attribution{Source: "newsletter"}, SessionID: "s1", CreatedAt: at},
			{ID: 1, PagePath: "/", SessionID: "s2", CreatedAt: at.Add(-time.Minute)},
		},
		clicks: []models.ClickEvent{
			{ID: 1, ButtonID: "hero-cta", ButtonText: "Explore Collections", PagePath: "/", SessionID: "s1", CreatedAt: at},
		},
	}
}

func newReportsApp(reader *fakeReader) (*fiber.App, *Reports) {
	reports := NewReports(analytics.NewDashboard(reader), reader, "1.2.3")
	reports.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }

	app := fiber.New(fiber.Config{Views: NewViews()})
	app.Get("/login", HandleLoginPage)
	app.Get("/analytics", middleware.AuthWithRedirect, reports.HandleDashboardPage)
	app.Get("/api/analytics/summary", middleware.Auth, reports.HandleSummary)
	app.Get("/api/analytics/export", middleware.Auth, reports.HandleExport)
	return app, reports
}

func signedIn(t *testing.T) {
	authenticateAs(t, &middleware.UserContext{UserID: uuid.New(), Username: "owner", SessionID: uuid.New()})
}

func TestHandleSummary(t *testing.T) {
	signedIn(t)
	app, _ := newReportsApp(sampleReader())

	resp, err := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, 2.0, payload["total_visits"])
	assert.Equal(t, 1.0, payload["total_clicks"])
	assert.Equal(t, 50.0, payload["conversion_rate"])
	assert.Equal(t, false, payload["stale"])
	assert.NotContains(t, payload, "notice")
	assert.Equal(t, []any{map[string]any{"key": "hero-cta", "count": 1.0}}, payload["top_buttons"])
}

func TestHandleSummaryReadFailureIsStale(t *testing.T) {
	signedIn(t)
	reader := sampleReader()
	app, _ := newReportsApp(reader)

	resp, err := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	reader.err = errBoom
	resp, err = app.Test(withSession(httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, true, payload["stale"])
	assert.Equal(t, staleNotice, payload["notice"])
	assert.Equal(t, 2.0, payload["total_visits"])
}

func TestHandleSummaryRequiresAuth(t *testing.T) {
	app, _ := newReportsApp(sampleReader())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleExport(t *testing.T) {
	signedIn(t)
	app, _ := newReportsApp(sampleReader())

	resp, err := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/api/analytics/export", nil)))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `analytics-2025-03-14.csv`)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(string(body), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Type,Timestamp,Page Path"))
	assert.True(t, strings.HasPrefix(lines[1], "Page Visit,"))
	assert.True(t, strings.HasPrefix(lines[3], "Type,Timestamp,Button ID"))
	assert.Contains(t, lines[4], "hero-cta,Explore Collections")
}

func TestHandleExportFailure(t *testing.T) {
	signedIn(t)
	app, _ := newReportsApp(&fakeReader{err: errBoom})

	resp, err := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/api/analytics/export", nil)))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to export analytics data", decodeBody(t, resp)["error"])
}

func TestDashboardPageRendersSummary(t *testing.T) {
	signedIn(t)
	app, _ := newReportsApp(sampleReader())

	resp, err := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/analytics", nil)))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	html := string(body)
	assert.Contains(t, html, "Explore Collections")
	assert.Contains(t, html, "newsletter")
	assert.Contains(t, html, "50.0%")
	assert.Contains(t, html, "owner")
	assert.NotContains(t, html, `class="notice"`)
}

func TestDashboardPageShowsNoticeOnFailure(t *testing.T) {
	signedIn(t)
	app, _ := newReportsApp(&fakeReader{err: errBoom})

	resp, err := app.Test(withSession(httptest.NewRequest(http.MethodGet, "/analytics", nil)))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), staleNotice)
}

func TestDashboardPageRedirectsWhenSignedOut(t *testing.T) {
	app, _ := newReportsApp(sampleReader())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/analytics", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginPageRenders(t *testing.T) {
	app, _ := newReportsApp(sampleReader())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "/api/auth/login")
}
