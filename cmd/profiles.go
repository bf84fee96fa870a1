package cmd

import (
	"errors"
	"fmt"

	"github.com/aaearon/ssocode/internal/config"
	"github.com/aaearon/ssocode/internal/ui"
	"github.com/aaearon/ssocode/internal/usage"
	"github.com/spf13/cobra"
)

// usageResetter forgets the usage record of a removed profile
type usageResetter interface {
	Reset(profile string) error
}

// NewProfilesCommand creates the profiles parent command with subcommands
func NewProfilesCommand() *cobra.Command {
	var resetter usageResetter
	if dir, err := usage.DefaultDir(); err == nil {
		resetter = usage.NewTracker(dir)
	}
	return NewProfilesCommandWithDeps(&uiPrompter{}, resetter)
}

// NewProfilesCommandWithDeps creates the profiles command with injected dependencies for testing
func NewProfilesCommandWithDeps(p prompter, resetter usageResetter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage TOTP profiles",
		Long: `Add, list, and remove TOTP profiles.

A profile names the environment variable that holds a secret, plus optional
issuer and account labels. The secret itself is never stored.`,
	}

	cmd.AddCommand(newProfilesAddCommand(func(c *cobra.Command, args []string) error {
		return runProfilesAdd(c, args, p)
	}))
	cmd.AddCommand(newProfilesListCommand())
	cmd.AddCommand(newProfilesRemoveCommand(func(c *cobra.Command, args []string) error {
		return runProfilesRemove(c, args, resetter)
	}))
	cmd.AddCommand(newProfilesDefaultCommand())

	return cmd
}

// newProfilesAddCommand creates the add command with a custom RunE function.
// All flag registration is centralized here.
func newProfilesAddCommand(runFn func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new profile",
		Long:  "Add a new profile. Without --secret-env the variable name is asked for interactively.",
		Args:  cobra.ExactArgs(1),
		RunE:  runFn,
	}

	cmd.Flags().String("secret-env", "", "Environment variable holding the Base32 secret or otpauth:// URI")
	cmd.Flags().String("issuer", "", "Issuer label, e.g. the institution")
	cmd.Flags().String("account", "", "Account label, e.g. your username")
	cmd.Flags().String("description", "", "Free-text description")
	cmd.Flags().Bool("default", false, "Make this the default profile")

	return cmd
}

func runProfilesAdd(cmd *cobra.Command, args []string, p prompter) error {
	name := args[0]

	cfg, cfgPath, err := config.LoadDefaultWithPath()
	if err != nil {
		return err
	}

	if _, err := config.GetProfile(cfg, name); err == nil {
		return fmt.Errorf("profile %q already exists", name)
	}

	var profile config.Profile
	profile.SecretEnv, _ = cmd.Flags().GetString("secret-env")
	profile.Issuer, _ = cmd.Flags().GetString("issuer")
	profile.Account, _ = cmd.Flags().GetString("account")
	profile.Description, _ = cmd.Flags().GetString("description")
	makeDefault, _ := cmd.Flags().GetBool("default")

	if profile.SecretEnv == "" {
		profile.SecretEnv, err = p.AskSecretEnv(config.DefaultSecretEnv)
		if err != nil {
			if errors.Is(err, ui.ErrNotInteractive) {
				return errors.New("--secret-env is required when not running interactively")
			}
			return err
		}
	}

	if err := config.AddProfile(cfg, name, profile); err != nil {
		return fmt.Errorf("failed to add profile: %w", err)
	}
	if makeDefault {
		cfg.DefaultProfile = name
	}

	if err := config.Save(cfg, cfgPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added profile %q reading $%s\n", name, profile.SecretEnv)
	return nil
}

func newProfilesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all profiles",
		Long:  "Display all configured profiles. The default profile is marked with *.",
		Args:  cobra.NoArgs,
		RunE:  runProfilesList,
	}
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.LoadDefaultWithPath()
	if err != nil {
		return err
	}

	entries := config.ListProfiles(cfg)

	if isJSONOutput() {
		out := make([]profileOutput, 0, len(entries))
		for _, e := range entries {
			out = append(out, profileOutput{
				Name:        e.Name,
				SecretEnv:   e.SecretEnv,
				Issuer:      e.Issuer,
				Account:     e.Account,
				Description: e.Description,
				Default:     e.Name == cfg.DefaultProfile,
			})
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No profiles configured, the secret is read from $%s\n", config.DefaultSecretEnv)
		return nil
	}

	for _, e := range entries {
		marker := " "
		if e.Name == cfg.DefaultProfile {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, ui.FormatProfileOption(e))
	}
	return nil
}

func newProfilesRemoveCommand(runFn func(*cobra.Command, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a profile",
		Long:  "Remove a profile by name. The secret in the environment or .env file is left untouched.",
		Args:  cobra.ExactArgs(1),
		RunE:  runFn,
	}
}

func runProfilesRemove(cmd *cobra.Command, args []string, resetter usageResetter) error {
	name := args[0]

	cfg, cfgPath, err := config.LoadDefaultWithPath()
	if err != nil {
		return err
	}

	if err := config.RemoveProfile(cfg, name); err != nil {
		return err
	}

	if err := config.Save(cfg, cfgPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if resetter != nil {
		if err := resetter.Reset(name); err != nil {
			log.Info("failed to clear usage record for %q: %v", name, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %q\n", name)
	return nil
}

func newProfilesDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "default <name>",
		Short: "Set the default profile",
		Long:  "Set the profile used when --profile is not given.",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfilesDefault,
	}
}

func runProfilesDefault(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, cfgPath, err := config.LoadDefaultWithPath()
	if err != nil {
		return err
	}

	if _, err := config.GetProfile(cfg, name); err != nil {
		return err
	}
	cfg.DefaultProfile = name

	if err := config.Save(cfg, cfgPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Default profile set to %q\n", name)
	return nil
}
