package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AsifaBeedi/jewel-site-booster/internal/analytics"
)

var statsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the dashboard summary",
	Long: `Print the same summary the dashboard shows: totals, conversion rate,
top buttons and top campaign sources.

Example:
  booster stats
  booster stats --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeDB, err := openStore()
		if err != nil {
			return err
		}
		defer closeDB()

		summary, err := analytics.NewDashboard(st).Refresh(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load analytics data: %w", err)
		}
		return outputSummary(cmd.OutOrStdout(), summary, statsFormat)
	},
}

func outputSummary(w io.Writer, summary analytics.Summary, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	case "table", "":
		return outputSummaryTable(w, summary)
	default:
		return fmt.Errorf("unknown format %q (use table, json or yaml)", format)
	}
}

func outputSummaryTable(w io.Writer, summary analytics.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(tw, "Total visits:\t%d\n", summary.TotalVisits)
	_, _ = fmt.Fprintf(tw, "Button clicks:\t%d\n", summary.TotalClicks)
	_, _ = fmt.Fprintf(tw, "Conversion rate:\t%.1f%%\n", summary.ConversionRate)

	writeCounts(tw, "TOP BUTTONS", "CLICKS", summary.TopButtons)
	writeCounts(tw, "TOP SOURCES", "VISITS", summary.TopSources)

	return tw.Flush()
}

func writeCounts(w io.Writer, title, unit string, counts []analytics.Count) {
	_, _ = fmt.Fprintf(w, "\n%s\t%s\n", title, unit)
	if len(counts) == 0 {
		_, _ = fmt.Fprintln(w, "(none)\t")
		return
	}
	for _, c := range counts {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", c.Key, c.Count)
	}
}

func init() {
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "table", "Output format (table, json, yaml)")
}
