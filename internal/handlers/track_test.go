package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsifaBeedi/jewel-site-booster/internal/metrics"
	"github.com/AsifaBeedi/jewel-site-booster/internal/middleware"
)

func newTrackApp(events EventWriter, m *metrics.Metrics) *fiber.App {
	app := fiber.New()
	tracking := NewTracking(events, m)
	cors := middleware.TrackCORS("*")
	app.Options("/track-event", cors, HandleTrackPreflight)
	app.Post("/track-event", cors, tracking.HandleTrackEvent)
	return app
}

func postEvent(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/track-event", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "TestAgent/1.0")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestTrackPageVisit(t *testing.T) {
	events := &fakeEvents{}
	m := metrics.New()
	app := newTrackApp(events, m)

	resp := postEvent(t, app, `{"type":"page_visit","data":{"page_path":"/shop","session_id":"s1","utm_source":"newsletter","user_agent":"spoofed"}}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"success": true}, decodeBody(t, resp))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	require.Len(t, events.visits, 1)
	visit := events.visits[0]
	assert.Equal(t, "/shop", visit.PagePath)
	assert.Equal(t, "s1", visit.SessionID)
	assert.Equal(t, "newsletter", visit.Source)
	assert.Equal(t, "TestAgent/1.0", visit.UserAgent)
	assert.Empty(t, events.clicks)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsTotal("page_visit", metrics.ResultStored)))
}

func TestTrackClick(t *testing.T) {
	events := &fakeEvents{}
	app := newTrackApp(events, nil)

	resp := postEvent(t, app, `{"type":"click","data":{"button_id":"hero-cta","button_text":"Explore Collections","page_path":"/","session_id":"s1"}}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, events.clicks, 1)
	assert.Equal(t, "hero-cta", events.clicks[0].ButtonID)
	assert.Equal(t, "Explore Collections", events.clicks[0].ButtonText)
	assert.Empty(t, events.visits)
}

func TestTrackInsertFailureReturns500(t *testing.T) {
	m := metrics.New()
	app := newTrackApp(&fakeEvents{err: errBoom}, m)

	resp := postEvent(t, app, `{"type":"click","data":{"button_id":"b","page_path":"/","session_id":"s1"}}`)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.NotEmpty(t, payload["error"])
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsTotal("click", metrics.ResultFailed)))
}

func TestTrackRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{"type":`, "Invalid JSON payload"},
		{"missing type", `{"data":{"page_path":"/"}}`, "type is required"},
		{"unknown type", `{"type":"purchase","data":{"page_path":"/","session_id":"s1"}}`, "unsupported event type"},
		{"missing page path", `{"type":"page_visit","data":{"session_id":"s1"}}`, "page_path is required"},
		{"missing button id", `{"type":"click","data":{"page_path":"/","session_id":"s1"}}`, "button_id is required"},
		{"oversized source", `{"type":"page_visit","data":{"page_path":"/","session_id":"s1","utm_source":"` + strings.Repeat("x", 256) + `"}}`, "utm_source exceeds maximum length of 255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &fakeEvents{}
			app := newTrackApp(events, nil)

			resp := postEvent(t, app, tt.body)

			assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
			payload := decodeBody(t, resp)
			assert.Contains(t, payload["error"], tt.message)
			assert.Empty(t, events.visits)
			assert.Empty(t, events.clicks)
		})
	}
}

func TestTrackPreflight(t *testing.T) {
	app := newTrackApp(&fakeEvents{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodOptions, "/track-event", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, middleware.TrackAllowHeaders, resp.Header.Get("Access-Control-Allow-Headers"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestTrackTruncatesUserAgent(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		wantLen   int
	}{
		{name: "ascii", userAgent: strings.Repeat("a", 900), wantLen: maxUserAgentLength},
		{name: "multibyte on the boundary", userAgent: "a" + strings.Repeat("é", 400), wantLen: maxUserAgentLength - 1},
		{name: "short", userAgent: "Mozilla/5.0 (été)", wantLen: len("Mozilla/5.0 (été)")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &fakeEvents{}
			app := newTrackApp(events, nil)

			req := httptest.NewRequest(http.MethodPost, "/track-event",
				strings.NewReader(`{"type":"page_visit","data":{"page_path":"/","session_id":"s1"}}`))
			req.Header.Set("User-Agent", tt.userAgent)
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			require.Len(t, events.visits, 1)
			stored := events.visits[0].UserAgent
			assert.Len(t, stored, tt.wantLen)
			assert.True(t, utf8.ValidString(stored))
			assert.True(t, strings.HasPrefix(tt.userAgent, stored))
		})
	}
}

func TestTruncateUserAgentDropsInvalidBytes(t *testing.T) {
	assert.Equal(t, "Mozilla", truncateUserAgent("Mozi\xffl\xfela"))
	assert.Empty(t, truncateUserAgent(""))
}
