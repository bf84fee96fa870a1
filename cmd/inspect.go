package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/aaearon/ssocode/internal/config"
	"github.com/aaearon/ssocode/internal/otp"
	"github.com/spf13/cobra"
)

// minKeyBytes is the shared secret length RFC 4226 requires (128 bits).
const minKeyBytes = 16

func newInspectCommand(runFn func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the secret without revealing it",
		Long: `Show how the profile's secret is decoded: its normalized length, how many
characters were ignored, the decoded key size and the current time step.
Neither the secret nor a code is printed.

Use this when the login page rejects the codes ssocode prints.`,
		Args: cobra.NoArgs,
		RunE: runFn,
	}

	addSecretFlags(cmd)

	return cmd
}

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	return newInspectCommand(func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigAndEnv()
		if err != nil {
			return err
		}
		deps := codeDeps{
			clock:    otp.SystemClock{},
			selector: &uiSelector{},
			stdin:    cmd.InOrStdin(),
			getenv:   os.Getenv,
		}
		return runInspect(cmd, cfg, deps)
	})
}

// NewInspectCommandWithDeps creates an inspect command with injected dependencies for testing
func NewInspectCommandWithDeps(cfg *config.Config, deps codeDeps) *cobra.Command {
	return newInspectCommand(func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd, cfg, deps)
	})
}

func runInspect(cmd *cobra.Command, cfg *config.Config, deps codeDeps) error {
	flags := parseSecretFlags(cmd)

	entry, err := resolveProfileEntry(cfg, flags.profile, deps.selector)
	if err != nil {
		return err
	}

	secret, src, err := resolveSecret(flags, entry, deps.stdin, deps.getenv)
	if err != nil {
		return err
	}

	now, err := otp.NewGenerator(deps.clock).Now()
	if err != nil {
		return fmt.Errorf("failed to determine the current time: %w", err)
	}

	report := inspectSecret(secret)
	report.Profile = entry.Name
	report.Source = src.String()
	report.Counter = otp.Counter(now)
	report.RemainingSeconds = int(otp.Remaining(now) / time.Second)

	if isJSONOutput() {
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		writeInspectText(cmd, report)
	}

	if report.KeyBytes == 0 {
		return fmt.Errorf("secret from %s is unusable: %w", report.Source, otp.ErrInvalidKey)
	}
	return nil
}

func inspectSecret(secret string) inspectOutput {
	clean, skipped := otp.Normalize(secret)
	keyBytes := len(otp.Decode(secret))

	report := inspectOutput{
		NormalizedLength: len(clean),
		SkippedChars:     skipped,
		KeyBytes:         keyBytes,
		DroppedBits:      len(clean)*5 - keyBytes*8,
	}

	if skipped > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d character(s) outside the Base32 alphabet were ignored", skipped))
	}
	switch {
	case keyBytes == 0:
		report.Warnings = append(report.Warnings, "secret decodes to zero bytes, no code can be generated")
	case keyBytes < minKeyBytes:
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("key is %d bytes, shorter than the %d bytes RFC 4226 requires", keyBytes, minKeyBytes))
	}

	return report
}

func writeInspectText(cmd *cobra.Command, r inspectOutput) {
	w := cmd.OutOrStdout()
	if r.Profile != "" {
		fmt.Fprintf(w, "Profile:           %s\n", r.Profile)
	}
	fmt.Fprintf(w, "Source:            %s\n", r.Source)
	fmt.Fprintf(w, "Base32 characters: %d\n", r.NormalizedLength)
	fmt.Fprintf(w, "Ignored:           %d\n", r.SkippedChars)
	fmt.Fprintf(w, "Key size:          %d bytes (%d trailing bits dropped)\n", r.KeyBytes, r.DroppedBits)
	fmt.Fprintf(w, "Time step:         %d (%ds left)\n", r.Counter, r.RemainingSeconds)

	for _, warning := range r.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", warning)
	}
}
