package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/aaearon/ssocode/internal/config"
	"github.com/aaearon/ssocode/internal/otp"
	"github.com/aaearon/ssocode/internal/ui"
	"github.com/aaearon/ssocode/internal/usage"
	sdk_config "github.com/cyberark/idsec-sdk-golang/pkg/config"
	"github.com/spf13/cobra"
)

var verbose bool

// codeFlags holds the command-line flags for code generation
type codeFlags struct {
	*secretFlags
	at    string
	fresh bool
}

// codeDeps holds the collaborators of code generation, injectable for testing
type codeDeps struct {
	clock    otp.Clock
	selector profileSelector
	tracker  usageTracker
	sleep    sleepFunc
	stdin    io.Reader
	getenv   func(string) string
}

// newRootCommand creates the root cobra command with the given RunE function.
// All flag registration and PersistentPreRunE setup is centralized here.
func newRootCommand(runFn func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ssocode",
		Short: "Print the current TOTP code for a single-sign-on login",
		Long: `Print the 6-digit time-based one-time password (RFC 6238) that your
single-sign-on login page asks for.

Running ssocode with no subcommand prints the current code. The secret is
read from an environment variable (optionally loaded from a .env file) or
from stdin, and is never written to disk. The variable may hold the plain
Base32 secret or a full otpauth:// URI.

Examples:
  # Code for the default profile
  ssocode

  # Code for a named profile, as JSON
  ssocode --profile rwth --output json

  # Secret from a pipe
  pass show rwth/totp | ssocode --secret-stdin

  # Never hand out the same code twice
  ssocode --fresh`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				sdk_config.EnableVerboseLogging("INFO")
			} else {
				sdk_config.DisableVerboseLogging()
			}
			return validateOutputFormat()
		},
		RunE: runFn,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")
	addSecretFlags(cmd)
	cmd.Flags().String("at", "", "Generate the code for this Unix time (seconds) instead of now")
	cmd.Flags().Bool("fresh", false, "Wait for the next window if this profile's current code was already printed")
	cmd.MarkFlagsMutuallyExclusive("at", "fresh")

	return cmd
}

var rootCmd = newRootCommand(runCodeProduction)

// runCodeProduction is the production RunE for the root command
func runCodeProduction(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigAndEnv()
	if err != nil {
		return err
	}

	deps := codeDeps{
		clock:    otp.SystemClock{},
		selector: &uiSelector{},
		sleep:    sleepContext,
		stdin:    cmd.InOrStdin(),
		getenv:   os.Getenv,
	}
	if dir, err := usage.DefaultDir(); err != nil {
		log.Info("usage tracking disabled: %v", err)
	} else {
		deps.tracker = usage.NewTracker(dir)
	}

	return runCodeWithDeps(cmd, parseCodeFlags(cmd), cfg, deps)
}

// NewRootCommandWithDeps creates a root command with injected dependencies for testing
func NewRootCommandWithDeps(cfg *config.Config, deps codeDeps) *cobra.Command {
	return newRootCommand(func(cmd *cobra.Command, args []string) error {
		return runCodeWithDeps(cmd, parseCodeFlags(cmd), cfg, deps)
	})
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if !verbose {
			fmt.Fprintln(os.Stderr, "Hint: re-run with --verbose for more details")
		}
		stop()
		os.Exit(1)
	}
}

func parseCodeFlags(cmd *cobra.Command) *codeFlags {
	flags := &codeFlags{secretFlags: parseSecretFlags(cmd)}
	flags.at, _ = cmd.Flags().GetString("at")
	flags.fresh, _ = cmd.Flags().GetBool("fresh")
	return flags
}

// loadConfigAndEnv loads the config file and the .env files it points to.
func loadConfigAndEnv() (*config.Config, error) {
	cfg, cfgPath, err := config.LoadDefaultWithPath()
	if err != nil {
		return nil, err
	}
	log.Info("Loaded config from %s", cfgPath)

	files, err := config.LoadEnv(cfg)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		log.Info("Loaded environment from %s", strings.Join(files, ", "))
	}
	return cfg, nil
}

func runCodeWithDeps(cmd *cobra.Command, flags *codeFlags, cfg *config.Config, deps codeDeps) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	entry, err := resolveProfileEntry(cfg, flags.profile, deps.selector)
	if err != nil {
		return err
	}
	if entry.Name != "" {
		log.Info("Using profile %q", entry.Name)
	}

	secret, src, err := resolveSecret(flags.secretFlags, entry, deps.stdin, deps.getenv)
	if err != nil {
		return err
	}
	log.Info("Read secret from %s", src)

	gen := otp.NewGenerator(deps.clock)

	var now time.Time
	if flags.at != "" {
		now, err = parseUnixTime(flags.at)
	} else {
		now, err = gen.Now()
	}
	if err != nil {
		return fmt.Errorf("failed to determine the current time: %w", err)
	}

	if flags.fresh {
		if !src.fromProfile {
			return errors.New("--fresh tracks the profile's own secret, drop --secret-env/--secret-stdin")
		}
		now, err = waitForFreshWindow(ctx, cmd.ErrOrStderr(), entry.Name, now, gen, deps)
		if err != nil {
			return err
		}
	}

	code, err := otp.CodeAt(secret, now)
	if err != nil {
		return fmt.Errorf("failed to generate code, check the secret: %w", err)
	}
	log.Info("Generated code for time step %d", code.Counter)

	// Usage belongs to the profile's secret; a flag-supplied secret may be
	// a different account altogether.
	if flags.at == "" && src.fromProfile && deps.tracker != nil {
		if err := deps.tracker.RecordUse(entry.Name, code.Counter); err != nil {
			log.Info("failed to record usage: %v", err)
		}
	}

	return writeCode(cmd.OutOrStdout(), entry.Name, code, now)
}

// waitForFreshWindow blocks until the time step after the one last handed
// out for profile, then re-reads the clock.
func waitForFreshWindow(ctx context.Context, errOut io.Writer, profile string, now time.Time, gen *otp.Generator, deps codeDeps) (time.Time, error) {
	if deps.tracker == nil {
		return time.Time{}, fmt.Errorf("--fresh needs usage tracking, which is unavailable")
	}

	last, ok := deps.tracker.LastUse(profile)
	if !ok || last.Counter < otp.Counter(now) {
		return now, nil
	}

	wait := usage.FreshAt(last, now, otp.Period).Sub(now)
	log.Info("Code for time step %d was already used, waiting %s", last.Counter, wait)
	if !isJSONOutput() {
		fmt.Fprintf(errOut, "Waiting %ds for a fresh code...\n", int(wait.Round(time.Second)/time.Second))
	}

	if err := deps.sleep(ctx, wait); err != nil {
		return time.Time{}, fmt.Errorf("interrupted while waiting for a fresh code: %w", err)
	}

	t, err := gen.Now()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to determine the current time: %w", err)
	}
	return t, nil
}

func writeCode(w io.Writer, profile string, code otp.Code, now time.Time) error {
	remaining := code.Remaining(now)

	if isJSONOutput() {
		return writeJSON(w, codeOutput{
			Code:             code.Value,
			Profile:          profile,
			Counter:          code.Counter,
			ValidFrom:        code.ValidFrom,
			ExpiresAt:        code.ExpiresAt,
			RemainingSeconds: int(remaining / time.Second),
		})
	}

	if ui.IsTerminalWriter(w) {
		fmt.Fprintf(w, "%s (valid for %ds)\n", code.Value, int(remaining/time.Second))
		return nil
	}
	fmt.Fprintln(w, code.Value)
	return nil
}

func parseUnixTime(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at value %q: %w", s, err)
	}
	if sec < 0 {
		return time.Time{}, fmt.Errorf("invalid --at value %q: %w", s, otp.ErrClockUnavailable)
	}
	return time.Unix(sec, 0), nil
}

// uiSelector wraps the ui.SelectProfile function to implement the profileSelector interface
type uiSelector struct{}

func (s *uiSelector) SelectProfile(entries []config.ProfileEntry) (*config.ProfileEntry, error) {
	return ui.SelectProfile(entries)
}

// uiPrompter wraps the ui prompt functions to implement the prompter interface
type uiPrompter struct{}

func (p *uiPrompter) AskSecretEnv(defaultName string) (string, error) {
	return ui.AskSecretEnv(defaultName)
}

func (p *uiPrompter) AskText(message, help, defaultValue string) (string, error) {
	return ui.AskText(message, help, defaultValue)
}
