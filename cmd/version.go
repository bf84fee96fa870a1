package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X github.com/aaearon/ssocode/cmd.version=...".
var (
	version   = ""
	commit    = ""
	buildDate = ""
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version, commit hash, and build date of ssocode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd)
		},
	}
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func printVersion(cmd *cobra.Command) error {
	platform := runtime.GOOS + "/" + runtime.GOARCH
	log.Info("Go version: %s", runtime.Version())
	log.Info("OS/Arch: %s", platform)

	out := versionOutput{
		Version:   orUnknown(version, "dev"),
		Commit:    orUnknown(commit, "unknown"),
		BuildDate: orUnknown(buildDate, "unknown"),
		GoVersion: runtime.Version(),
		Platform:  platform,
	}
	if isJSONOutput() {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ssocode version %s\ncommit: %s\nbuilt: %s\n", out.Version, out.Commit, out.BuildDate)
	return nil
}
