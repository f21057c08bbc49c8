package tracker

import (
	"context"
	"net/url"
	"sync"

	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

// Emitter turns page loads and control clicks into events.
// It keeps the current page location, which clicks are attributed to.
type Emitter struct {
	session *Session
	sender  Sender

	mu   sync.RWMutex
	path string
}

// NewEmitter returns an Emitter with no page loaded yet; clicks before the
// first RecordPageVisit are attributed to "/".
func NewEmitter(session *Session, sender Sender) *Emitter {
	return &Emitter{session: session, sender: sender, path: "/"}
}

// Session returns the session context the emitter reads from.
func (e *Emitter) Session() *Session {
	return e.session
}

// CurrentPath is the path of the last recorded page load.
func (e *Emitter) CurrentPath() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.path
}

// SetCurrentPath attributes later clicks to path without recording a visit.
func (e *Emitter) SetCurrentPath(path string) {
	if path == "" {
		path = "/"
	}
	e.mu.Lock()
	e.path = path
	e.mu.Unlock()
}

// RecordPageVisit records a load of rawURL. UTM parameters in rawURL
// replace the session's snapshot; the event carries whatever snapshot is
// stored afterwards.
func (e *Emitter) RecordPageVisit(ctx context.Context, rawURL, referrer string) Outcome {
	path := rawURL
	if u, err := url.Parse(rawURL); err != nil {
		logging.L().Warn("unparseable page url, recording it verbatim", "url", rawURL, "error", err)
	} else {
		e.session.CaptureAttribution(u)
		path = u.Path
	}
	if path == "" {
		path = "/"
	}

	e.mu.Lock()
	e.path = path
	e.mu.Unlock()

	data := models.EventData{
		PagePath:  path,
		Referrer:  referrer,
		SessionID: e.session.ID(),
	}.WithAttribution(e.session.Attribution())

	return e.sender.Send(ctx, models.EventPageVisit, data)
}

// RecordClick records a click on controlID. content is the control's
// visible content; only a plain string is used as the label, anything
// else falls back to controlID.
func (e *Emitter) RecordClick(ctx context.Context, controlID string, content any) Outcome {
	data := models.EventData{
		ButtonID:   controlID,
		ButtonText: ClickLabel(controlID, content),
		PagePath:   e.CurrentPath(),
		SessionID:  e.session.ID(),
	}.WithAttribution(e.session.Attribution())

	return e.sender.Send(ctx, models.EventClick, data)
}

// RecordPageVisitAsync is RecordPageVisit without blocking the caller.
func (e *Emitter) RecordPageVisitAsync(ctx context.Context, rawURL, referrer string) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		out <- e.RecordPageVisit(ctx, rawURL, referrer)
	}()
	return out
}

// RecordClickAsync is RecordClick without blocking the caller.
func (e *Emitter) RecordClickAsync(ctx context.Context, controlID string, content any) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		out <- e.RecordClick(ctx, controlID, content)
	}()
	return out
}

// WrapClick returns a handler that records the click, waits for the
// attempt to finish, then runs onClick whatever the outcome was.
func (e *Emitter) WrapClick(controlID string, content any, onClick func(ctx context.Context)) func(ctx context.Context) {
	return func(ctx context.Context) {
		e.RecordClick(ctx, controlID, content)
		if onClick != nil {
			onClick(ctx)
		}
	}
}

// ClickLabel picks the text recorded for a click.
func ClickLabel(controlID string, content any) string {
	if label, ok := content.(string); ok {
		return label
	}
	return controlID
}
