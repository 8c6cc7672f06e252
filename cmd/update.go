package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/beeperdesk/beeper"
)

const repositorySlug = "s0up4200/beeperdesk"

var checkOnly bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update beeperdesk to the latest release",
	RunE:  runUpdate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "beeperdesk %s (built %s, client %s, %s/%s)\n",
			version, buildTime, beeper.Version, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
}

// currentVersion parses the build version. Development builds have none.
func currentVersion() (semver.Version, error) {
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return semver.Version{}, fmt.Errorf("cannot update a development build (version %q)", version)
	}
	return v, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	current, err := currentVersion()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repositorySlug))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	out := cmd.OutOrStdout()
	if latest.LessOrEqual(current.String()) {
		fmt.Fprintf(out, "beeperdesk %s is up to date\n", current)
		return nil
	}
	if checkOnly {
		fmt.Fprintf(out, "Update available: %s -> %s\n", current, latest.Version())
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	logger.Info().Str("from", current.String()).Str("to", latest.Version()).Msg("Updating beeperdesk")
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Fprintf(out, "Updated to %s\n", latest.Version())
	return nil
}
