package ui

import (
	"fmt"

	"github.com/Iilun/survey/v2"
	"github.com/aaearon/ssocode/internal/config"
)

// FormatProfileOption formats a profile into a display string.
func FormatProfileOption(entry config.ProfileEntry) string {
	label := entry.Name
	switch {
	case entry.Issuer != "" && entry.Account != "":
		label += fmt.Sprintf(" (%s: %s)", entry.Issuer, entry.Account)
	case entry.Issuer != "":
		label += fmt.Sprintf(" (%s)", entry.Issuer)
	case entry.Description != "":
		label += fmt.Sprintf(" (%s)", entry.Description)
	}
	return label
}

// BuildOptions builds display options for the given profiles, keeping their order.
func BuildOptions(entries []config.ProfileEntry) []string {
	options := make([]string, len(entries))
	for i, entry := range entries {
		options[i] = FormatProfileOption(entry)
	}
	return options
}

// FindProfileByDisplay finds a profile by its formatted display string.
func FindProfileByDisplay(entries []config.ProfileEntry, display string) (*config.ProfileEntry, error) {
	for i := range entries {
		if FormatProfileOption(entries[i]) == display {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("profile not found: %s", display)
}

// SelectProfile presents an interactive selector for choosing a profile.
func SelectProfile(entries []config.ProfileEntry) (*config.ProfileEntry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no profiles configured")
	}
	if !IsInteractive() {
		return nil, ErrNotInteractive
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select a profile:",
		Options: BuildOptions(entries),
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, fmt.Errorf("profile selection failed: %w", err)
	}

	return FindProfileByDisplay(entries, selected)
}

// AskSecretEnv prompts for the name of the environment variable holding a
// profile's secret. The secret itself is never asked for.
func AskSecretEnv(defaultName string) (string, error) {
	if !IsInteractive() {
		return "", ErrNotInteractive
	}

	var name string
	if err := survey.AskOne(&survey.Input{
		Message: "Environment variable holding the TOTP secret:",
		Help:    "ssocode reads the secret from this variable (or from your .env file); the secret itself is never stored",
		Default: defaultName,
	}, &name, survey.WithValidator(survey.Required), survey.WithValidator(func(ans interface{}) error {
		s, _ := ans.(string)
		return config.ValidateSecretEnv(s)
	})); err != nil {
		return "", fmt.Errorf("failed to read secret env name: %w", err)
	}
	return name, nil
}

// AskText prompts for an optional free-text value.
func AskText(message, help, defaultValue string) (string, error) {
	if !IsInteractive() {
		return "", ErrNotInteractive
	}

	var value string
	if err := survey.AskOne(&survey.Input{
		Message: message,
		Help:    help,
		Default: defaultValue,
	}, &value); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return value, nil
}
