package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"

	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
	"github.com/AsifaBeedi/jewel-site-booster/internal/metrics"
	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

const (
	maxUserAgentLength = 500
	insertTimeout      = 10 * time.Second
)

// EventWriter persists tracking events.
type EventWriter interface {
	InsertPageVisit(ctx context.Context, v *models.PageVisit) error
	InsertClickEvent(ctx context.Context, c *models.ClickEvent) error
}

// Tracking serves the public ingestion endpoint.
type Tracking struct {
	events  EventWriter
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewTracking returns the ingestion handlers. m may be nil.
func NewTracking(events EventWriter, m *metrics.Metrics) *Tracking {
	return &Tracking{events: events, metrics: m, now: time.Now}
}

// HandleTrackEvent accepts one envelope and stores one row.
// POST /track-event
func (t *Tracking) HandleTrackEvent(c fiber.Ctx) error {
	var envelope models.Envelope
	if err := json.Unmarshal(c.Body(), &envelope); err != nil {
		t.metrics.ObserveEvent("", metrics.ResultRejected, 0)
		logging.L().Warn("rejected tracking event", "reason", "malformed json", "error", err)
		return trackError(c, "Invalid JSON payload")
	}

	event, err := envelope.Event(truncateUserAgent(c.Get(fiber.HeaderUserAgent)))
	if err != nil {
		t.metrics.ObserveEvent(string(envelope.Type), metrics.ResultRejected, 0)
		logging.L().Warn("rejected tracking event", "type", envelope.Type, "error", err)
		return trackError(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Context(), insertTimeout)
	defer cancel()

	start := t.now()
	switch e := event.(type) {
	case *models.PageVisit:
		err = t.events.InsertPageVisit(ctx, e)
	case *models.ClickEvent:
		err = t.events.InsertClickEvent(ctx, e)
	default:
		err = errors.New("unsupported event")
	}
	took := t.now().Sub(start)

	if err != nil {
		t.metrics.ObserveEvent(string(event.Type()), metrics.ResultFailed, took)
		logging.L().Error("failed to store tracking event", "type", event.Type(), "error", err)
		return trackError(c, "Failed to record event")
	}

	t.metrics.ObserveEvent(string(event.Type()), metrics.ResultStored, took)
	logging.L().Info("tracked event",
		"type", event.Type(),
		"session_id", envelope.Data.SessionID,
		"page_path", envelope.Data.PagePath,
	)
	return c.JSON(fiber.Map{"success": true})
}

// HandleTrackPreflight answers CORS preflights with an empty 200.
// OPTIONS /track-event
func HandleTrackPreflight(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).Send(nil)
}

// truncateUserAgent caps ua at maxUserAgentLength bytes without splitting a character.
func truncateUserAgent(ua string) string {
	ua = strings.ToValidUTF8(ua, "")
	if len(ua) <= maxUserAgentLength {
		return ua
	}
	cut := maxUserAgentLength
	for cut > 0 && !utf8.RuneStart(ua[cut]) {
		cut--
	}
	return ua[:cut]
}

func trackError(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}
