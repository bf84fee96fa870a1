package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrAmbiguousProfile is returned by ResolveProfile when several profiles
// exist and none is selected or set as default.
var ErrAmbiguousProfile = errors.New("multiple profiles configured and none selected")

// ProfileEntry pairs a profile name with its data, used for sorted listing.
type ProfileEntry struct {
	Name string
	Profile
}

// AddProfile adds a named profile to the config. Returns an error if the name
// already exists or the profile has no secret_env.
func AddProfile(cfg *Config, name string, p Profile) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("profile name is required")
	}
	if _, exists := cfg.Profiles[name]; exists {
		return fmt.Errorf("profile %q already exists", name)
	}
	if err := ValidateSecretEnv(p.SecretEnv); err != nil {
		return err
	}

	cfg.Profiles[name] = p
	return nil
}

// RemoveProfile removes a named profile. Returns an error if not found.
// Removing the default profile clears the default.
func RemoveProfile(cfg *Config, name string) error {
	if _, exists := cfg.Profiles[name]; !exists {
		return fmt.Errorf("profile %q not found", name)
	}

	delete(cfg.Profiles, name)
	if cfg.DefaultProfile == name {
		cfg.DefaultProfile = ""
	}
	return nil
}

// GetProfile retrieves a profile by name. Returns an error if not found.
func GetProfile(cfg *Config, name string) (Profile, error) {
	p, exists := cfg.Profiles[name]
	if !exists {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// ListProfiles returns all profiles sorted alphabetically by name.
func ListProfiles(cfg *Config) []ProfileEntry {
	entries := make([]ProfileEntry, 0, len(cfg.Profiles))
	for name, p := range cfg.Profiles {
		entries = append(entries, ProfileEntry{Name: name, Profile: p})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// ResolveProfile picks the profile to use: the named one, else the default,
// else the only configured one. With no profiles configured it returns an
// unnamed profile reading DefaultSecretEnv.
func ResolveProfile(cfg *Config, name string) (ProfileEntry, error) {
	if name == "" {
		name = cfg.DefaultProfile
	}

	if name != "" {
		p, err := GetProfile(cfg, name)
		if err != nil {
			return ProfileEntry{}, err
		}
		return ProfileEntry{Name: name, Profile: p}, nil
	}

	switch len(cfg.Profiles) {
	case 0:
		return ProfileEntry{Profile: Profile{SecretEnv: DefaultSecretEnv}}, nil
	case 1:
		return ListProfiles(cfg)[0], nil
	default:
		return ProfileEntry{}, ErrAmbiguousProfile
	}
}

// ValidateSecretEnv checks that name is usable as an environment variable name.
func ValidateSecretEnv(name string) error {
	if name == "" {
		return errors.New("secret_env is required")
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Errorf("invalid secret_env %q: use letters, digits and underscores", name)
		}
	}
	return nil
}
