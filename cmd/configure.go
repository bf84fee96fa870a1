package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aaearon/ssocode/internal/config"
	"github.com/aaearon/ssocode/internal/ui"
	"github.com/spf13/cobra"
)

func newConfigureCommand(runFn func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Set the default profile and .env file",
		Long: `Configure ssocode's defaults in ~/.ssocode/config.yaml (or $SSOCODE_CONFIG).

--env-file names a .env file loaded before every command, in addition to
./.env. Values already present in the environment win over both files.
--default-profile selects the profile used when --profile is not given.

Without flags, configure prompts for both values.`,
		Args: cobra.NoArgs,
		RunE: runFn,
	}

	cmd.Flags().String("env-file", "", "Path of a .env file holding secrets (e.g. ~/.config/ssocode/.env)")
	cmd.Flags().String("default-profile", "", "Profile to use when --profile is not given")

	return cmd
}

// NewConfigureCommand creates the configure command
func NewConfigureCommand() *cobra.Command {
	return newConfigureCommand(func(cmd *cobra.Command, args []string) error {
		cfgPath, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
		return runConfigure(cmd, &uiPrompter{}, cfgPath)
	})
}

// NewConfigureCommandWithDeps creates a configure command with injected dependencies for testing
func NewConfigureCommandWithDeps(p prompter, cfgPath string) *cobra.Command {
	return newConfigureCommand(func(cmd *cobra.Command, args []string) error {
		return runConfigure(cmd, p, cfgPath)
	})
}

func runConfigure(cmd *cobra.Command, p prompter, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	defaultProfile, _ := cmd.Flags().GetString("default-profile")
	promptNeeded := !cmd.Flags().Changed("env-file") && !cmd.Flags().Changed("default-profile")

	if promptNeeded {
		envFile, err = p.AskText(".env file (optional):",
			"A dotenv file with your TOTP secrets, loaded before every command", cfg.EnvFile)
		if err != nil {
			if errors.Is(err, ui.ErrNotInteractive) {
				return errors.New("nothing to configure, pass --env-file or --default-profile")
			}
			return err
		}
		defaultProfile, err = p.AskText("Default profile (optional):",
			"Profile used when --profile is not given", cfg.DefaultProfile)
		if err != nil {
			return err
		}
	} else {
		if !cmd.Flags().Changed("env-file") {
			envFile = cfg.EnvFile
		}
		if !cmd.Flags().Changed("default-profile") {
			defaultProfile = cfg.DefaultProfile
		}
	}

	defaultProfile = strings.TrimSpace(defaultProfile)
	if defaultProfile != "" {
		if _, err := config.GetProfile(cfg, defaultProfile); err != nil {
			return fmt.Errorf("%w, add it first with 'ssocode profiles add'", err)
		}
	}

	cfg.EnvFile = strings.TrimSpace(envFile)
	cfg.DefaultProfile = defaultProfile

	log.Info("Saving config...")
	if err := config.Save(cfg, cfgPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", cfgPath)
	return nil
}
