package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AsifaBeedi/jewel-site-booster/internal/httpx"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if the server is healthy",
	Long:  "Performs an HTTP request to the /up endpoint to verify the server and database are operational",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return runHealthcheck(cmd.Context(), fmt.Sprintf("http://localhost:%s/up", cfg.Port))
	},
}

func runHealthcheck(ctx context.Context, url string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := &http.Client{
		Timeout: 2 * time.Second,
	}

	status, err := httpx.GetStatus(ctx, client, url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	if status != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Healthcheck failed: status %d\n", status)
		return fmt.Errorf("healthcheck failed: status %d", status)
	}
	return nil
}

func init() {
	RootCmd.AddCommand(healthcheckCmd)
}
