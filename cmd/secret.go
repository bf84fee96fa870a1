package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aaearon/ssocode/internal/config"
	"github.com/aaearon/ssocode/internal/otp"
	"github.com/spf13/cobra"
)

// secretFlags selects where the secret is read from.
type secretFlags struct {
	profile     string
	secretEnv   string
	secretStdin bool
}

// secretSource describes where a secret came from, for verbose output.
// It never contains the secret.
type secretSource struct {
	kind string // "stdin" or "env"
	name string // env var name for kind "env"
	uri  bool   // secret was unwrapped from an otpauth URI

	// fromProfile is set when the secret came from the profile's own
	// secret_env rather than a flag override.
	fromProfile bool
}

func (s secretSource) String() string {
	src := "stdin"
	if s.kind == "env" {
		src = "$" + s.name
	}
	if s.uri {
		src += " (otpauth URI)"
	}
	return src
}

func addSecretFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("profile", "p", "", "Profile to use (default from config)")
	cmd.Flags().String("secret-env", "", "Read the secret from this environment variable instead of the profile's")
	cmd.Flags().Bool("secret-stdin", false, "Read the secret from the first line of stdin")
	cmd.MarkFlagsMutuallyExclusive("secret-env", "secret-stdin")
}

func parseSecretFlags(cmd *cobra.Command) *secretFlags {
	flags := &secretFlags{}
	flags.profile, _ = cmd.Flags().GetString("profile")
	flags.secretEnv, _ = cmd.Flags().GetString("secret-env")
	flags.secretStdin, _ = cmd.Flags().GetBool("secret-stdin")
	return flags
}

// resolveProfileEntry picks the profile, falling back to interactive
// selection when several profiles exist and none is chosen.
func resolveProfileEntry(cfg *config.Config, name string, selector profileSelector) (config.ProfileEntry, error) {
	entry, err := config.ResolveProfile(cfg, name)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, config.ErrAmbiguousProfile) || selector == nil {
		return config.ProfileEntry{}, err
	}

	entries := config.ListProfiles(cfg)
	selected, selErr := selector.SelectProfile(entries)
	if selErr != nil {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name
		}
		return config.ProfileEntry{}, fmt.Errorf(
			"multiple profiles configured (%s), pass --profile or set one with 'ssocode profiles default': %w",
			strings.Join(names, ", "), selErr)
	}
	return *selected, nil
}

// resolveSecret reads the secret for entry. Precedence: --secret-stdin,
// --secret-env, then the profile's secret_env. A value holding an
// otpauth:// URI is unwrapped to its secret.
func resolveSecret(flags *secretFlags, entry config.ProfileEntry, stdin io.Reader, getenv func(string) string) (string, secretSource, error) {
	var raw string
	var src secretSource

	switch {
	case flags.secretStdin:
		src = secretSource{kind: "stdin"}
		line, err := readFirstLine(stdin)
		if err != nil {
			return "", src, fmt.Errorf("failed to read secret from stdin: %w", err)
		}
		raw = line
	default:
		name := flags.secretEnv
		if name == "" {
			name = entry.SecretEnv
		}
		src = secretSource{kind: "env", name: name, fromProfile: flags.secretEnv == ""}
		raw = getenv(name)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		if src.kind == "env" {
			return "", src, fmt.Errorf("no secret found in $%s, export it or add it to your .env file", src.name)
		}
		return "", src, errors.New("no secret found on stdin")
	}

	if strings.HasPrefix(strings.ToLower(raw), "otpauth://") {
		key, err := otp.ParseURI(raw)
		if err != nil {
			return "", src, err
		}
		src.uri = true
		raw = key.Secret
	}

	return raw, src, nil
}

func readFirstLine(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("stdin not available")
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}
