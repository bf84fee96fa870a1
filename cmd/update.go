package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

const updateSlug = "aaearon/ssocode"

// NewUpdateCommand creates the update command with production dependencies
func NewUpdateCommand() *cobra.Command {
	return NewUpdateCommandWithDeps(selfupdate.DefaultUpdater())
}

// NewUpdateCommandWithDeps creates the update command with injected dependencies
func NewUpdateCommandWithDeps(updater selfUpdater) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update ssocode to the latest release",
		Long: `Check GitHub Releases for a newer ssocode and replace the running binary.

With --check nothing is installed; the command only reports whether a
newer release exists. Codes, secrets and the config file are not touched
either way.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checkOnly, _ := cmd.Flags().GetBool("check")
			if checkOnly {
				return runUpdateCheck(cmd, updater)
			}
			return runUpdate(cmd, updater)
		},
	}

	cmd.Flags().Bool("check", false, "Only report whether a newer release exists")

	return cmd
}

// currentVersion parses the build version. ok is false for dev builds.
func currentVersion() (v semver.Version, ok bool, err error) {
	if version == "" || version == "dev" {
		return semver.Version{}, false, nil
	}
	v, err = semver.Parse(strings.TrimPrefix(version, "v"))
	if err != nil {
		return semver.Version{}, false, fmt.Errorf("failed to parse current version %q: %w", version, err)
	}
	return v, true, nil
}

func runUpdateCheck(cmd *cobra.Command, updater selfUpdater) error {
	current, released, err := currentVersion()
	if err != nil {
		return err
	}

	log.Info("Checking for updates from %s", updateSlug)
	latest, found, err := updater.DetectLatest(updateSlug)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found || latest == nil {
		return fmt.Errorf("no releases found for %s", updateSlug)
	}
	log.Info("Latest release: %s", latest.Version)

	out := updateOutput{
		Current:         orUnknown(version, "dev"),
		Latest:          latest.Version.String(),
		ReleaseURL:      latest.URL,
		UpdateAvailable: !released || latest.Version.GT(current),
	}
	if isJSONOutput() {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	if out.UpdateAvailable {
		fmt.Fprintf(cmd.OutOrStdout(), "ssocode %s is available (running %s), run 'ssocode update' to install it.\n", out.Latest, out.Current)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "ssocode %s is up to date.\n", out.Current)
	}
	return nil
}

func runUpdate(cmd *cobra.Command, updater selfUpdater) error {
	current, released, err := currentVersion()
	if err != nil {
		return err
	}
	if !released {
		return errors.New("cannot update a dev build; install a release build or download from GitHub Releases")
	}

	log.Info("Current version: %s", current)
	log.Info("Checking for updates from %s", updateSlug)

	rel, err := updater.UpdateSelf(current, updateSlug)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if rel == nil {
		return errors.New("update check returned no release information")
	}
	log.Info("Latest release: %s", rel.Version)

	out := updateOutput{
		Current:    current.String(),
		Latest:     rel.Version.String(),
		ReleaseURL: rel.URL,
		Updated:    !current.Equals(rel.Version),
	}
	if isJSONOutput() {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	if !out.Updated {
		fmt.Fprintf(cmd.OutOrStdout(), "ssocode %s is already up to date.\n", current)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated ssocode from %s to %s.\n", current, rel.Version)
	return nil
}
