package cmd

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/aaearon/ssocode/internal/config"
	"github.com/aaearon/ssocode/internal/otp"
	"github.com/spf13/cobra"
)

// errCodeMismatch is returned by verify so the process exits non-zero.
var errCodeMismatch = errors.New("code does not match")

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

func newVerifyCommand(runFn func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <code>",
		Short: "Check a code against the secret",
		Long: `Check a 6-digit code against the profile's secret, allowing for clock
drift of --skew windows in either direction. Exits non-zero when the code
does not match.

The check is done by an independent TOTP implementation, so it also serves
as a cross-check of the codes ssocode prints.`,
		Args: cobra.ExactArgs(1),
		RunE: runFn,
	}

	addSecretFlags(cmd)
	cmd.Flags().Uint("skew", 1, fmt.Sprintf("Number of 30s windows of clock drift to accept either side (at most %d)", otp.MaxSkew))
	cmd.Flags().String("at", "", "Verify against this Unix time (seconds) instead of now")

	return cmd
}

// NewVerifyCommand creates the verify command
func NewVerifyCommand() *cobra.Command {
	return newVerifyCommand(func(cmd *cobra.Command, args []string) error {
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
		return runVerify(cmd, args, cfg, deps)
	})
}

// NewVerifyCommandWithDeps creates a verify command with injected dependencies for testing
func NewVerifyCommandWithDeps(cfg *config.Config, deps codeDeps) *cobra.Command {
	return newVerifyCommand(func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd, args, cfg, deps)
	})
}

func runVerify(cmd *cobra.Command, args []string, cfg *config.Config, deps codeDeps) error {
	code := strings.TrimSpace(args[0])
	if !codePattern.MatchString(code) {
		return fmt.Errorf("invalid code %q: expected %d digits", args[0], otp.Digits)
	}

	flags := parseSecretFlags(cmd)
	skew, _ := cmd.Flags().GetUint("skew")
	if skew > otp.MaxSkew {
		return fmt.Errorf("invalid --skew %d: %w", skew, otp.ErrSkewTooLarge)
	}
	at, _ := cmd.Flags().GetString("at")

	entry, err := resolveProfileEntry(cfg, flags.profile, deps.selector)
	if err != nil {
		return err
	}

	secret, src, err := resolveSecret(flags, entry, deps.stdin, deps.getenv)
	if err != nil {
		return err
	}
	log.Info("Read secret from %s", src)

	var now time.Time
	if at != "" {
		now, err = parseUnixTime(at)
	} else {
		now, err = otp.NewGenerator(deps.clock).Now()
	}
	if err != nil {
		return fmt.Errorf("failed to determine the current time: %w", err)
	}

	valid, err := otp.Verify(secret, code, now, skew)
	if err != nil {
		return fmt.Errorf("failed to verify code, check the secret: %w", err)
	}
	log.Info("Verified against time step %d with skew %d: %t", otp.Counter(now), skew, valid)

	if isJSONOutput() {
		if err := writeJSON(cmd.OutOrStdout(), verifyOutput{Valid: valid, Profile: entry.Name, Skew: skew}); err != nil {
			return err
		}
	} else if valid {
		fmt.Fprintln(cmd.OutOrStdout(), "Code is valid")
	}

	if !valid {
		return errCodeMismatch
	}
	return nil
}
