package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AsifaBeedi/jewel-site-booster/internal/tracker"
)

var (
	trackEndpoint    string
	trackSessionFile string
	trackAPIKey      string
	trackReferrer    string
	trackText        string
	trackPage        string
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Send tracking events like the storefront does",
	Long: `Send tracking events through the same session, attribution and
transport code the storefront uses. The session id and UTM snapshot
persist in --session-file between invocations, so a visit with UTM
parameters followed by a click reproduces a real attributed journey.

Example:
  booster track visit "https://shop.example/?utm_source=newsletter"
  booster track click hero-cta --text "Explore Collections"`,
}

var trackVisitCmd = &cobra.Command{
	Use:   "visit <url>",
	Short: "Record a page visit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		emitter, err := newCLIEmitter()
		if err != nil {
			return err
		}
		outcome := emitter.RecordPageVisit(cmd.Context(), args[0], trackReferrer)
		return reportOutcome(cmd.OutOrStdout(), emitter, outcome)
	},
}

var trackClickCmd = &cobra.Command{
	Use:   "click <control-id>",
	Short: "Record a button click",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		emitter, err := newCLIEmitter()
		if err != nil {
			return err
		}
		emitter.SetCurrentPath(trackPage)

		var content any
		if cmd.Flags().Changed("text") {
			content = trackText
		}
		outcome := emitter.RecordClick(cmd.Context(), args[0], content)
		return reportOutcome(cmd.OutOrStdout(), emitter, outcome)
	},
}

func newCLIEmitter() (*tracker.Emitter, error) {
	endpoint := trackEndpoint
	if endpoint == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		endpoint = fmt.Sprintf("http://localhost:%s/track-event", cfg.Port)
	}

	sessionFile := trackSessionFile
	if sessionFile == "" {
		sessionFile = defaultSessionFile()
	}
	if err := os.MkdirAll(filepath.Dir(sessionFile), 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	session := tracker.NewSession(tracker.NewFileStorage(sessionFile))
	transport := tracker.NewHTTPTransport(endpoint, tracker.WithAPIKey(trackAPIKey))
	return tracker.NewEmitter(session, transport), nil
}

func defaultSessionFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "booster", "session.json")
}

func reportOutcome(w io.Writer, emitter *tracker.Emitter, outcome tracker.Outcome) error {
	session := emitter.Session().ID()
	if outcome.Delivered {
		_, _ = fmt.Fprintf(w, "✓ Delivered (status %d, session %s)\n", outcome.StatusCode, session)
		return nil
	}
	if outcome.Err != nil {
		return fmt.Errorf("event not delivered: %w", outcome.Err)
	}
	return fmt.Errorf("event not delivered: status %d", outcome.StatusCode)
}

func init() {
	trackCmd.PersistentFlags().StringVar(&trackEndpoint, "endpoint", "", "Ingestion URL (default: http://localhost:<port>/track-event)")
	trackCmd.PersistentFlags().StringVar(&trackSessionFile, "session-file", "", "File holding the session id and UTM snapshot")
	trackCmd.PersistentFlags().StringVar(&trackAPIKey, "api-key", "", "Gateway key sent as apikey and Bearer token")

	trackVisitCmd.Flags().StringVar(&trackReferrer, "referrer", "", "Referring URL")
	trackClickCmd.Flags().StringVar(&trackText, "text", "", "Visible label of the control")
	trackClickCmd.Flags().StringVar(&trackPage, "page", "/", "Page path the click happened on")

	trackCmd.AddCommand(trackVisitCmd)
	trackCmd.AddCommand(trackClickCmd)
	RootCmd.AddCommand(trackCmd)
}
