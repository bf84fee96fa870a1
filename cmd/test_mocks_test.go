package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/aaearon/ssocode/internal/config"
	"github.com/aaearon/ssocode/internal/otp"
	"github.com/aaearon/ssocode/internal/usage"
	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// rfcSecret is the Base32 form of the RFC 4226 test key "12345678901234567890".
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

// fixedClock returns a clock pinned to the given Unix second
func fixedClock(sec int64) otp.Clock {
	return otp.ClockFunc(func() time.Time { return time.Unix(sec, 0) })
}

// envMap returns a getenv function backed by a map
func envMap(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

// mockProfileSelector implements profileSelector interface
type mockProfileSelector struct {
	profile *config.ProfileEntry
	err     error
	calls   int
}

func (m *mockProfileSelector) SelectProfile(entries []config.ProfileEntry) (*config.ProfileEntry, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.profile != nil {
		return m.profile, nil
	}
	if len(entries) == 0 {
		return nil, errors.New("no profiles")
	}
	return &entries[0], nil
}

// mockUsageTracker implements usageTracker and usageResetter interfaces
type mockUsageTracker struct {
	records   map[string]usage.Record
	recordErr error
	resetErr  error
	reset     []string
}

func newMockUsageTracker() *mockUsageTracker {
	return &mockUsageTracker{records: make(map[string]usage.Record)}
}

func (m *mockUsageTracker) LastUse(profile string) (usage.Record, bool) {
	r, ok := m.records[profile]
	return r, ok
}

func (m *mockUsageTracker) RecordUse(profile string, counter uint64) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records[profile] = usage.Record{Counter: counter, UsedAt: time.Now()}
	return nil
}

func (m *mockUsageTracker) Reset(profile string) error {
	m.reset = append(m.reset, profile)
	return m.resetErr
}

// mockPrompter implements prompter interface
type mockPrompter struct {
	secretEnv    string
	secretEnvErr error
	answers      []string
	askErr       error
	asked        []string
}

func (m *mockPrompter) AskSecretEnv(defaultName string) (string, error) {
	m.asked = append(m.asked, "secret_env")
	return m.secretEnv, m.secretEnvErr
}

func (m *mockPrompter) AskText(message, help, defaultValue string) (string, error) {
	m.asked = append(m.asked, message)
	if m.askErr != nil {
		return "", m.askErr
	}
	if len(m.answers) == 0 {
		return defaultValue, nil
	}
	answer := m.answers[0]
	m.answers = m.answers[1:]
	return answer, nil
}

// mockSelfUpdater implements selfUpdater interface
type mockSelfUpdater struct {
	latest    *selfupdate.Release
	detectErr error
	release   *selfupdate.Release
	updateErr error
	slugs     []string
	installed bool
}

func (m *mockSelfUpdater) DetectLatest(slug string) (*selfupdate.Release, bool, error) {
	m.slugs = append(m.slugs, slug)
	if m.detectErr != nil {
		return nil, false, m.detectErr
	}
	return m.latest, m.latest != nil, nil
}

func (m *mockSelfUpdater) UpdateSelf(current semver.Version, slug string) (*selfupdate.Release, error) {
	m.slugs = append(m.slugs, slug)
	m.installed = true
	return m.release, m.updateErr
}

// release builds a GitHub release for the given version
func release(v string) *selfupdate.Release {
	return &selfupdate.Release{
		Version: semver.MustParse(v),
		URL:     "https://github.com/aaearon/ssocode/releases/tag/v" + v,
	}
}

// recordingSleep records requested waits and advances a clock instead of sleeping
type recordingSleep struct {
	waits   []time.Duration
	advance *int64
	err     error
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	if r.err != nil {
		return r.err
	}
	if r.advance != nil {
		*r.advance += int64(d / time.Second)
	}
	return nil
}
