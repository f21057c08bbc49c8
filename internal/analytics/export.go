package analytics

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

const (
	visitsHeader = "Type,Timestamp,Page Path,UTM Source,UTM Medium,UTM Campaign,Referrer,Session ID"
	clicksHeader = "Type,Timestamp,Button ID,Button Text,Page Path,UTM Source,UTM Medium,UTM Campaign,Session ID"
)

// ExportReader is the read side needed for a full export.
type ExportReader interface {
	AllPageVisits(ctx context.Context) ([]models.PageVisit, error)
	AllClickEvents(ctx context.Context) ([]models.ClickEvent, error)
}

// ExportFilename names a download produced at now.
func ExportFilename(now time.Time) string {
	return "analytics-" + now.UTC().Format("2006-01-02") + ".csv"
}

// Export loads every visit and click and writes them as CSV to w.
func Export(ctx context.Context, r ExportReader, w io.Writer) error {
	visits, err := r.AllPageVisits(ctx)
	if err != nil {
		return fmt.Errorf("load page visits: %w", err)
	}
	clicks, err := r.AllClickEvents(ctx)
	if err != nil {
		return fmt.Errorf("load click events: %w", err)
	}
	return WriteCSV(w, visits, clicks)
}

// WriteCSV writes the visits block followed by the clicks block. Values are
// joined with commas verbatim; a comma inside a value shifts its columns.
func WriteCSV(w io.Writer, visits []models.PageVisit, clicks []models.ClickEvent) error {
	lines := make([]string, 0, len(visits)+len(clicks)+2)

	lines = append(lines, visitsHeader)
	for _, v := range visits {
		lines = append(lines, strings.Join([]string{
			"Page Visit",
			timestamp(v.CreatedAt),
			v.PagePath,
			v.Source,
			v.Medium,
			v.Campaign,
			v.Referrer,
			v.SessionID,
		}, ","))
	}

	lines = append(lines, clicksHeader)
	for _, c := range clicks {
		lines = append(lines, strings.Join([]string{
			"Click Event",
			timestamp(c.CreatedAt),
			c.ButtonID,
			c.ButtonText,
			c.PagePath,
			c.Source,
			c.Medium,
			c.Campaign,
			c.SessionID,
		}, ","))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
