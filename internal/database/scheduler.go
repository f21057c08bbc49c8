package database

import (
	"context"
	"time"

	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
)

var (
	nowFunc        = time.Now
	janitorEvery   = 24 * time.Hour
	janitorTimeout = 30 * time.Second
)

// SessionJanitor periodically purges expired dashboard sessions.
// Event tables are append-only and never touched.
type SessionJanitor struct {
	stopChan chan struct{}
	done     chan struct{}
}

// NewSessionJanitor creates a new janitor
func NewSessionJanitor() *SessionJanitor {
	return &SessionJanitor{
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one purge immediately, then one per janitorEvery.
func (sj *SessionJanitor) Start() {
	logging.L().Info("starting session janitor", "interval", janitorEvery)
	go sj.run()
}

// Stop gracefully stops the janitor and waits for the loop to exit.
func (sj *SessionJanitor) Stop() {
	close(sj.stopChan)
	<-sj.done
}

func (sj *SessionJanitor) run() {
	defer close(sj.done)

	ticker := time.NewTicker(janitorEvery)
	defer ticker.Stop()

	sj.purgeExpiredSessions()

	for {
		select {
		case <-ticker.C:
			sj.purgeExpiredSessions()
		case <-sj.stopChan:
			return
		}
	}
}

// purgeExpiredSessions deletes sessions whose expiry has passed
func (sj *SessionJanitor) purgeExpiredSessions() {
	if DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), janitorTimeout)
	defer cancel()

	result, err := DB.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at < $1`, nowFunc().UTC())
	if err != nil {
		logging.L().Warn("failed to purge expired sessions", "error", err)
		return
	}

	if purged, err := result.RowsAffected(); err == nil && purged > 0 {
		logging.L().Info("purged expired sessions", "count", purged)
	}
}
