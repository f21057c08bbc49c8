package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AsifaBeedi/jewel-site-booster/internal/analytics"
)

var (
	exportDir    string
	exportStdout bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every visit and click as CSV",
	Long: `Export every visit and click as CSV, in the same format as the
dashboard download. The file is named analytics-YYYY-MM-DD.csv.

Example:
  booster export --dir ./reports
  booster export --stdout > all.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeDB, err := openStore()
		if err != nil {
			return err
		}
		defer closeDB()

		var buf bytes.Buffer
		if err := analytics.Export(cmd.Context(), st, &buf); err != nil {
			return fmt.Errorf("failed to export analytics data: %w", err)
		}

		if exportStdout {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}

		path := filepath.Join(exportDir, analytics.ExportFilename(time.Now()))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "Directory to write the CSV file into")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write the CSV to stdout instead of a file")
}
