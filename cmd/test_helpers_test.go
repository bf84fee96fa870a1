package cmd

import (
	"bytes"

	"github.com/spf13/cobra"
)

// newTestRootCommand creates a bare root command for attaching subcommands in tests
func newTestRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ssocode",
		Short: "Print the current TOTP code for a single-sign-on login",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOutputFormat()
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")
	return cmd
}

// executeCommand executes a command and returns its output
func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}
