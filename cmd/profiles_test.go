package cmd

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aaearon/ssocode/internal/config"
	"github.com/aaearon/ssocode/internal/ui"
)

// setupConfig points SSOCODE_CONFIG at a temp file seeded with cfg
func setupConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("SSOCODE_CONFIG", cfgPath)
	if cfg != nil {
		if err := config.Save(cfg, cfgPath); err != nil {
			t.Fatalf("failed to seed config: %v", err)
		}
	}
	return cfgPath
}

func loadConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func TestProfilesAdd(t *testing.T) {
	tests := []struct {
		name        string
		seed        *config.Config
		args        []string
		prompter    *mockPrompter
		wantErr     string
		wantContain string
		check       func(t *testing.T, cfg *config.Config)
	}{
		{
			name:        "with flags",
			args:        []string{"add", "work", "--secret-env", "WORK_TOTP", "--issuer", "RWTH", "--account", "ab123456"},
			prompter:    &mockPrompter{},
			wantContain: `Added profile "work" reading $WORK_TOTP`,
			check: func(t *testing.T, cfg *config.Config) {
				p := cfg.Profiles["work"]
				if p.SecretEnv != "WORK_TOTP" || p.Issuer != "RWTH" || p.Account != "ab123456" {
					t.Errorf("unexpected profile %+v", p)
				}
				if cfg.DefaultProfile != "" {
					t.Errorf("default = %q, want empty", cfg.DefaultProfile)
				}
			},
		},
		{
			name:        "prompts for secret env",
			args:        []string{"add", "work", "--default"},
			prompter:    &mockPrompter{secretEnv: "PROMPTED"},
			wantContain: "$PROMPTED",
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Profiles["work"].SecretEnv != "PROMPTED" {
					t.Errorf("secret_env = %q, want PROMPTED", cfg.Profiles["work"].SecretEnv)
				}
				if cfg.DefaultProfile != "work" {
					t.Errorf("default = %q, want work", cfg.DefaultProfile)
				}
			},
		},
		{
			name:     "not interactive without secret env",
			args:     []string{"add", "work"},
			prompter: &mockPrompter{secretEnvErr: ui.ErrNotInteractive},
			wantErr:  "--secret-env is required",
		},
		{
			name: "duplicate",
			seed: &config.Config{Profiles: map[string]config.Profile{
				"work": {SecretEnv: "WORK_TOTP"},
			}},
			args:     []string{"add", "work", "--secret-env", "OTHER"},
			prompter: &mockPrompter{},
			wantErr:  "already exists",
		},
		{
			name:     "invalid env name",
			args:     []string{"add", "work", "--secret-env", "1BAD"},
			prompter: &mockPrompter{},
			wantErr:  "invalid secret_env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := setupConfig(t, tt.seed)

			cmd := NewProfilesCommandWithDeps(tt.prompter, newMockUsageTracker())
			output, err := executeCommand(cmd, tt.args...)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(output, tt.wantContain) {
				t.Errorf("output missing %q\ngot:\n%s", tt.wantContain, output)
			}
			if tt.check != nil {
				tt.check(t, loadConfig(t, cfgPath))
			}
		})
	}
}

func TestProfilesList(t *testing.T) {
	setupConfig(t, &config.Config{
		DefaultProfile: "work",
		Profiles: map[string]config.Profile{
			"work": {SecretEnv: "WORK_TOTP", Issuer: "RWTH", Account: "ab123456"},
			"home": {SecretEnv: "HOME_TOTP", Description: "private"},
		},
	})

	cmd := NewProfilesCommandWithDeps(&mockPrompter{}, nil)
	output, err := executeCommand(cmd, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "  home (private)\n* work (RWTH: ab123456)\n"
	if output != want {
		t.Errorf("output = %q, want %q", output, want)
	}
}

func TestProfilesList_Empty(t *testing.T) {
	setupConfig(t, nil)

	cmd := NewProfilesCommandWithDeps(&mockPrompter{}, nil)
	output, err := executeCommand(cmd, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "No profiles configured") {
		t.Errorf("output = %q", output)
	}
}

func TestProfilesList_JSON(t *testing.T) {
	oldFormat := outputFormat
	defer func() { outputFormat = oldFormat }()

	setupConfig(t, &config.Config{
		DefaultProfile: "work",
		Profiles: map[string]config.Profile{
			"work": {SecretEnv: "WORK_TOTP"},
		},
	})

	rootCmd := newTestRootCommand()
	rootCmd.AddCommand(NewProfilesCommandWithDeps(&mockPrompter{}, nil))

	output, err := executeCommand(rootCmd, "profiles", "list", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []profileOutput
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\ngot: %s", err, output)
	}
	if len(got) != 1 || got[0].Name != "work" || got[0].SecretEnv != "WORK_TOTP" || !got[0].Default {
		t.Errorf("unexpected output %+v", got)
	}
}

func TestProfilesRemove(t *testing.T) {
	cfgPath := setupConfig(t, &config.Config{
		DefaultProfile: "work",
		Profiles: map[string]config.Profile{
			"work": {SecretEnv: "WORK_TOTP"},
			"home": {SecretEnv: "HOME_TOTP"},
		},
	})
	tracker := newMockUsageTracker()

	cmd := NewProfilesCommandWithDeps(&mockPrompter{}, tracker)
	output, err := executeCommand(cmd, "remove", "work")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, `Removed profile "work"`) {
		t.Errorf("output = %q", output)
	}

	cfg := loadConfig(t, cfgPath)
	if _, ok := cfg.Profiles["work"]; ok {
		t.Error("profile work still present")
	}
	if cfg.DefaultProfile != "" {
		t.Errorf("default = %q, want cleared", cfg.DefaultProfile)
	}
	if len(tracker.reset) != 1 || tracker.reset[0] != "work" {
		t.Errorf("reset = %v, want [work]", tracker.reset)
	}
}

func TestProfilesRemove_ResetFailureIsNotFatal(t *testing.T) {
	setupConfig(t, &config.Config{Profiles: map[string]config.Profile{
		"work": {SecretEnv: "WORK_TOTP"},
	}})
	tracker := newMockUsageTracker()
	tracker.resetErr = errors.New("read-only")

	cmd := NewProfilesCommandWithDeps(&mockPrompter{}, tracker)
	if _, err := executeCommand(cmd, "remove", "work"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProfilesRemove_NotFound(t *testing.T) {
	setupConfig(t, nil)

	cmd := NewProfilesCommandWithDeps(&mockPrompter{}, nil)
	_, err := executeCommand(cmd, "remove", "nope")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestProfilesDefault(t *testing.T) {
	cfgPath := setupConfig(t, &config.Config{Profiles: map[string]config.Profile{
		"work": {SecretEnv: "WORK_TOTP"},
	}})

	cmd := NewProfilesCommandWithDeps(&mockPrompter{}, nil)
	if _, err := executeCommand(cmd, "default", "work"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := loadConfig(t, cfgPath).DefaultProfile; got != "work" {
		t.Errorf("default = %q, want work", got)
	}

	cmd = NewProfilesCommandWithDeps(&mockPrompter{}, nil)
	if _, err := executeCommand(cmd, "default", "nope"); err == nil {
		t.Error("expected error for unknown profile")
	}
}
