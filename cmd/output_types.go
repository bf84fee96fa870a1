package cmd

import "time"

// codeOutput is the JSON representation of a generated code.
type codeOutput struct {
	Code             string    `json:"code"`
	Profile          string    `json:"profile,omitempty"`
	Counter          uint64    `json:"counter"`
	ValidFrom        time.Time `json:"validFrom"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int       `json:"remainingSeconds"`
}

// verifyOutput is the JSON representation of a verification result.
type verifyOutput struct {
	Valid   bool   `json:"valid"`
	Profile string `json:"profile,omitempty"`
	Skew    uint   `json:"skew"`
}

// inspectOutput is the JSON representation of a secret inspection.
// It never carries the secret or a code.
type inspectOutput struct {
	Profile          string   `json:"profile,omitempty"`
	Source           string   `json:"source"`
	NormalizedLength int      `json:"normalizedLength"`
	SkippedChars     int      `json:"skippedChars"`
	KeyBytes         int      `json:"keyBytes"`
	DroppedBits      int      `json:"droppedBits"`
	Counter          uint64   `json:"counter"`
	RemainingSeconds int      `json:"remainingSeconds"`
	Warnings         []string `json:"warnings,omitempty"`
}

// profileOutput is the JSON representation of a configured profile.
type profileOutput struct {
	Name        string `json:"name"`
	SecretEnv   string `json:"secretEnv"`
	Issuer      string `json:"issuer,omitempty"`
	Account     string `json:"account,omitempty"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default"`
}

// updateOutput is the JSON representation of an update check or install.
type updateOutput struct {
	Current         string `json:"current"`
	Latest          string `json:"latest"`
	ReleaseURL      string `json:"releaseUrl,omitempty"`
	UpdateAvailable bool   `json:"updateAvailable"`
	Updated         bool   `json:"updated"`
}

// versionOutput is the JSON representation of the build information.
type versionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}
