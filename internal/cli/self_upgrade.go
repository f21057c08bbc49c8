//go:build !docker

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

// releaseRepository is where release binaries are published.
const releaseRepository = "AsifaBeedi/jewel-site-booster"

// releaseSource finds and installs published binaries.
type releaseSource interface {
	Latest(repo string) (*selfupdate.Release, bool, error)
	Install(assetURL, exe string) error
}

type githubReleases struct{}

func (githubReleases) Latest(repo string) (*selfupdate.Release, bool, error) {
	return selfupdate.DetectLatest(repo)
}

func (githubReleases) Install(assetURL, exe string) error {
	return selfupdate.UpdateTo(assetURL, exe)
}

// releases and exitAfterUpgrade are swapped out in tests
var (
	releases         releaseSource = githubReleases{}
	exitAfterUpgrade               = os.Exit
)

var (
	selfUpgradeRequested bool
	selfUpgradeCheckOnly bool
	selfUpgradeAutoYes   bool
)

type upgradeOptions struct {
	checkOnly bool
	assumeYes bool
	in        io.Reader
	out       io.Writer
}

func setupSelfUpgrade() {
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeRequested, "self-upgrade", false, "Install the newest booster release, then exit")
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeCheckOnly, "self-upgrade-check", false, "Report whether a newer booster release exists, then exit")
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeAutoYes, "self-upgrade-yes", false, "Install without asking for confirmation")

	previous := RootCmd.PersistentPreRunE
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if previous != nil {
			if err := previous(cmd, args); err != nil {
				return err
			}
		}
		return handleSelfUpgradeFlags(cmd)
	}
}

// handleSelfUpgradeFlags exits the process once an upgrade request has been served.
func handleSelfUpgradeFlags(cmd *cobra.Command) error {
	if !selfUpgradeRequested && !selfUpgradeCheckOnly {
		return nil
	}

	err := runSelfUpgrade(upgradeOptions{
		checkOnly: selfUpgradeCheckOnly,
		assumeYes: selfUpgradeAutoYes,
		in:        cmd.InOrStdin(),
		out:       cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	exitAfterUpgrade(0)
	return nil
}

// parseReleaseVersion rejects development builds, which carry no semver.
func parseReleaseVersion(version string) (semver.Version, error) {
	versionStr := strings.TrimSpace(strings.TrimPrefix(version, "v"))
	if versionStr == "" {
		return semver.Version{}, errors.New("self-upgrade is only available for release builds")
	}
	current, err := semver.Parse(versionStr)
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid current version %q: %w", version, err)
	}
	return current, nil
}

func runSelfUpgrade(opts upgradeOptions) error {
	current, err := parseReleaseVersion(Version)
	if err != nil {
		return err
	}

	latest, found, err := releases.Latest(releaseRepository)
	if err != nil {
		return fmt.Errorf("look up releases of %s: %w", releaseRepository, err)
	}
	if !found || latest == nil {
		return fmt.Errorf("%s has no published releases for %s/%s", releaseRepository, runtime.GOOS, runtime.GOARCH)
	}

	if !latest.Version.GT(current) {
		_, _ = fmt.Fprintf(opts.out, "booster v%s is the newest release\n", current)
		return nil
	}
	_, _ = fmt.Fprintf(opts.out, "booster v%s is available (running v%s)\n", latest.Version, current)
	if opts.checkOnly {
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate running binary: %w", err)
	}

	if !opts.assumeYes {
		ok, err := confirmUpgrade(opts.in, opts.out, exe)
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(opts.out, "Upgrade skipped")
			return nil
		}
	}

	if err := releases.Install(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("install v%s: %w", latest.Version, err)
	}
	_, _ = fmt.Fprintf(opts.out, "✓ Installed v%s at %s; restart booster to use it\n", latest.Version, exe)
	return nil
}

// confirmUpgrade treats an empty line as yes and closed input as no.
func confirmUpgrade(in io.Reader, out io.Writer, exe string) (bool, error) {
	_, _ = fmt.Fprintf(out, "Replace %s? [Y/n] ", exe)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if errors.Is(err, io.EOF) && answer == "" {
		return false, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
