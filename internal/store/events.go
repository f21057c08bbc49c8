package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

const pageVisitColumns = `id, page_path, utm_source, utm_medium, utm_campaign, utm_term, utm_content,
	referrer, user_agent, session_id, created_at`

const clickEventColumns = `id, button_id, button_text, page_path, utm_source, utm_medium, utm_campaign,
	utm_term, utm_content, user_agent, session_id, created_at`

// InsertPageVisit appends one row to page_visits and fills in ID and CreatedAt.
func (s *Store) InsertPageVisit(ctx context.Context, v *models.PageVisit) error {
	createdAt := s.timestamp()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO page_visits (page_path, utm_source, utm_medium, utm_campaign, utm_term, utm_content,
			referrer, user_agent, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		v.PagePath,
		nullIfEmpty(v.Source), nullIfEmpty(v.Medium), nullIfEmpty(v.Campaign),
		nullIfEmpty(v.Term), nullIfEmpty(v.Content),
		nullIfEmpty(v.Referrer), v.UserAgent,
		v.SessionID, createdAt,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("insert page visit: %w", err)
	}
	v.CreatedAt = createdAt
	return nil
}

// InsertClickEvent appends one row to click_events and fills in ID and CreatedAt.
func (s *Store) InsertClickEvent(ctx context.Context, c *models.ClickEvent) error {
	createdAt := s.timestamp()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO click_events (button_id, button_text, page_path, utm_source, utm_medium, utm_campaign,
			utm_term, utm_content, user_agent, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		c.ButtonID, nullIfEmpty(c.ButtonText), c.PagePath,
		nullIfEmpty(c.Source), nullIfEmpty(c.Medium), nullIfEmpty(c.Campaign),
		nullIfEmpty(c.Term), nullIfEmpty(c.Content),
		c.UserAgent, c.SessionID, createdAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert click event: %w", err)
	}
	c.CreatedAt = createdAt
	return nil
}

// CountPageVisits returns the total number of page visits.
func (s *Store) CountPageVisits(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM page_visits`)
}

// CountClickEvents returns the total number of click events.
func (s *Store) CountClickEvents(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM click_events`)
}

func (s *Store) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// ClickButtonIDs returns every click's button_id in insertion order.
func (s *Store) ClickButtonIDs(ctx context.Context) ([]string, error) {
	return s.column(ctx, `SELECT button_id FROM click_events ORDER BY id`)
}

// VisitUTMSources returns every non-null visit utm_source in insertion order.
func (s *Store) VisitUTMSources(ctx context.Context) ([]string, error) {
	return s.column(ctx, `SELECT utm_source FROM page_visits WHERE utm_source IS NOT NULL ORDER BY id`)
}

func (s *Store) column(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query column: %w", err)
	}
	defer closeRows(rows)

	values := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

// RecentPageVisits returns the newest limit visits, newest first.
func (s *Store) RecentPageVisits(ctx context.Context, limit int) ([]models.PageVisit, error) {
	return s.pageVisits(ctx, limit)
}

// AllPageVisits returns every visit, newest first.
func (s *Store) AllPageVisits(ctx context.Context) ([]models.PageVisit, error) {
	return s.pageVisits(ctx, 0)
}

// RecentClickEvents returns the newest limit clicks, newest first.
func (s *Store) RecentClickEvents(ctx context.Context, limit int) ([]models.ClickEvent, error) {
	return s.clickEvents(ctx, limit)
}

// AllClickEvents returns every click, newest first.
func (s *Store) AllClickEvents(ctx context.Context) ([]models.ClickEvent, error) {
	return s.clickEvents(ctx, 0)
}

func (s *Store) pageVisits(ctx context.Context, limit int) ([]models.PageVisit, error) {
	query := `SELECT ` + pageVisitColumns + ` FROM page_visits ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query page visits: %w", err)
	}
	defer closeRows(rows)

	visits := []models.PageVisit{}
	for rows.Next() {
		var (
			v                                       models.PageVisit
			source, medium, campaign, term, content sql.NullString
			referrer, userAgent                     sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.PagePath, &source, &medium, &campaign, &term, &content,
			&referrer, &userAgent, &v.SessionID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan page visit: %w", err)
		}
		v.Attribution = models.Attribution{
			Source:   source.String,
			Medium:   medium.String,
			Campaign: campaign.String,
			Term:     term.String,
			Content:  content.String,
		}
		v.Referrer = referrer.String
		v.UserAgent = userAgent.String
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (s *Store) clickEvents(ctx context.Context, limit int) ([]models.ClickEvent, error) {
	query := `SELECT ` + clickEventColumns + ` FROM click_events ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query click events: %w", err)
	}
	defer closeRows(rows)

	clicks := []models.ClickEvent{}
	for rows.Next() {
		var (
			c                                       models.ClickEvent
			buttonText, userAgent                   sql.NullString
			source, medium, campaign, term, content sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.ButtonID, &buttonText, &c.PagePath,
			&source, &medium, &campaign, &term, &content,
			&userAgent, &c.SessionID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan click event: %w", err)
		}
		c.ButtonText = buttonText.String
		c.Attribution = models.Attribution{
			Source:   source.String,
			Medium:   medium.String,
			Campaign: campaign.String,
			Term:     term.String,
			Content:  content.String,
		}
		c.UserAgent = userAgent.String
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}
