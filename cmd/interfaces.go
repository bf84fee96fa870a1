package cmd

import (
	"context"
	"time"

	"github.com/aaearon/ssocode/internal/config"
	"github.com/aaearon/ssocode/internal/usage"
	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// profileSelector interface for interactive profile selection
type profileSelector interface {
	SelectProfile(entries []config.ProfileEntry) (*config.ProfileEntry, error)
}

// usageTracker interface for remembering the last time step handed out per profile
type usageTracker interface {
	LastUse(profile string) (usage.Record, bool)
	RecordUse(profile string, counter uint64) error
}

// prompter interface for interactive text input
type prompter interface {
	AskSecretEnv(defaultName string) (string, error)
	AskText(message, help, defaultValue string) (string, error)
}

// selfUpdater interface for checking for and installing newer releases.
// Satisfied by *selfupdate.Updater.
type selfUpdater interface {
	DetectLatest(slug string) (*selfupdate.Release, bool, error)
	UpdateSelf(current semver.Version, slug string) (*selfupdate.Release, error)
}

// sleepFunc blocks for d or until ctx is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
