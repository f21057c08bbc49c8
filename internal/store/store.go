// Package store persists analytics events and dashboard accounts.
//
// Queries use $N placeholders, which both pgx and modernc sqlite accept.
package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store wraps a connection pool.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a Store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func nullIfEmpty(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.L().Warn("failed to close rows", "error", err)
	}
}
