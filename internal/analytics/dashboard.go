package analytics

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

const (
	// TopLimit bounds the top buttons and top sources lists.
	TopLimit = 5
	// RecentLimit bounds the recent visits and recent clicks lists.
	RecentLimit = 10
)

// Reader is the read side of the event store.
type Reader interface {
	CountPageVisits(ctx context.Context) (int64, error)
	CountClickEvents(ctx context.Context) (int64, error)
	ClickButtonIDs(ctx context.Context) ([]string, error)
	VisitUTMSources(ctx context.Context) ([]string, error)
	RecentPageVisits(ctx context.Context, limit int) ([]models.PageVisit, error)
	RecentClickEvents(ctx context.Context, limit int) ([]models.ClickEvent, error)
}

// Summary is what the dashboard renders.
type Summary struct {
	TotalVisits    int64               `json:"total_visits" yaml:"total_visits"`
	TotalClicks    int64               `json:"total_clicks" yaml:"total_clicks"`
	ConversionRate float64             `json:"conversion_rate" yaml:"conversion_rate"`
	TopButtons     []Count             `json:"top_buttons" yaml:"top_buttons"`
	TopSources     []Count             `json:"top_sources" yaml:"top_sources"`
	RecentVisits   []models.PageVisit  `json:"recent_visits" yaml:"-"`
	RecentClicks   []models.ClickEvent `json:"recent_clicks" yaml:"-"`
	GeneratedAt    time.Time           `json:"generated_at" yaml:"generated_at"`
}

func emptySummary() Summary {
	return Summary{
		TopButtons:   []Count{},
		TopSources:   []Count{},
		RecentVisits: []models.PageVisit{},
		RecentClicks: []models.ClickEvent{},
	}
}

// ConversionRate is clicks per hundred visits rounded to one decimal,
// or 0 when there are no visits.
func ConversionRate(visits, clicks int64) float64 {
	if visits <= 0 {
		return 0
	}
	return math.Round(float64(clicks)/float64(visits)*1000) / 10
}

// Dashboard computes summaries and remembers the last good one.
type Dashboard struct {
	reader Reader
	now    func() time.Time

	mu   sync.RWMutex
	last *Summary
}

// NewDashboard returns a Dashboard reading from r.
func NewDashboard(r Reader) *Dashboard {
	return &Dashboard{reader: r, now: time.Now}
}

// Refresh runs every read concurrently. The reads are independent and see
// no common snapshot. On failure it returns the last good summary (or an
// empty one) together with the error.
func (d *Dashboard) Refresh(ctx context.Context) (Summary, error) {
	var (
		visits, clicks int64
		buttonIDs      []string
		sources        []string
		recentVisits   []models.PageVisit
		recentClicks   []models.ClickEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		visits, err = d.reader.CountPageVisits(gctx)
		return err
	})
	g.Go(func() (err error) {
		clicks, err = d.reader.CountClickEvents(gctx)
		return err
	})
	g.Go(func() (err error) {
		buttonIDs, err = d.reader.ClickButtonIDs(gctx)
		return err
	})
	g.Go(func() (err error) {
		sources, err = d.reader.VisitUTMSources(gctx)
		return err
	})
	g.Go(func() (err error) {
		recentVisits, err = d.reader.RecentPageVisits(gctx, RecentLimit)
		return err
	})
	g.Go(func() (err error) {
		recentClicks, err = d.reader.RecentClickEvents(gctx, RecentLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		logging.L().Error("dashboard refresh failed", "error", err)
		return d.Last(), err
	}

	summary := Summary{
		TotalVisits:    visits,
		TotalClicks:    clicks,
		ConversionRate: ConversionRate(visits, clicks),
		TopButtons:     TopN(buttonIDs, TopLimit),
		TopSources:     TopN(sources, TopLimit),
		RecentVisits:   recentVisits,
		RecentClicks:   recentClicks,
		GeneratedAt:    d.now().UTC(),
	}
	if summary.RecentVisits == nil {
		summary.RecentVisits = []models.PageVisit{}
	}
	if summary.RecentClicks == nil {
		summary.RecentClicks = []models.ClickEvent{}
	}

	d.mu.Lock()
	d.last = &summary
	d.mu.Unlock()

	return summary, nil
}

// Last returns the most recent successful summary, or an empty one.
func (d *Dashboard) Last() Summary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.last == nil {
		return emptySummary()
	}
	return *d.last
}
