package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aaearon/ssocode/internal/config"
	"github.com/aaearon/ssocode/internal/otp"
)

func TestVerifyCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		env         map[string]string
		wantErr     error
		wantErrText string
		wantContain string
	}{
		{
			name:        "current code",
			args:        []string{"287082"},
			env:         map[string]string{config.DefaultSecretEnv: rfcSecret},
			wantContain: "Code is valid",
		},
		{
			name:        "next window within default skew",
			args:        []string{"359152"},
			env:         map[string]string{config.DefaultSecretEnv: rfcSecret},
			wantContain: "Code is valid",
		},
		{
			name:    "next window with zero skew",
			args:    []string{"359152", "--skew", "0"},
			env:     map[string]string{config.DefaultSecretEnv: rfcSecret},
			wantErr: errCodeMismatch,
		},
		{
			name:        "at flag moves the window",
			args:        []string{"081804", "--at", "1111111109", "--skew", "0"},
			env:         map[string]string{config.DefaultSecretEnv: rfcSecret},
			wantContain: "Code is valid",
		},
		{
			name:    "wrong code",
			args:    []string{"000000"},
			env:     map[string]string{config.DefaultSecretEnv: rfcSecret},
			wantErr: errCodeMismatch,
		},
		{
			name:    "skew above limit",
			args:    []string{"287082", "--skew", "4294967295"},
			env:     map[string]string{config.DefaultSecretEnv: rfcSecret},
			wantErr: otp.ErrSkewTooLarge,
		},
		{
			name:        "malformed code",
			args:        []string{"12345"},
			env:         map[string]string{config.DefaultSecretEnv: rfcSecret},
			wantErrText: "expected 6 digits",
		},
		{
			name:    "unusable secret",
			args:    []string{"287082"},
			env:     map[string]string{config.DefaultSecretEnv: "1890"},
			wantErr: otp.ErrInvalidKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVerifyCommandWithDeps(config.DefaultConfig(), codeDeps{
				clock:  fixedClock(59),
				getenv: envMap(tt.env),
			})

			output, err := executeCommand(cmd, tt.args...)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantErrText != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrText) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErrText)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !strings.Contains(output, tt.wantContain) {
					t.Errorf("output missing %q\ngot:\n%s", tt.wantContain, output)
				}
			}
		})
	}
}

func TestVerifyCommand_RequiresCode(t *testing.T) {
	cmd := NewVerifyCommandWithDeps(config.DefaultConfig(), codeDeps{
		clock:  fixedClock(59),
		getenv: envMap(nil),
	})

	if _, err := executeCommand(cmd); err == nil {
		t.Fatal("expected error without a code argument")
	}
}

func TestVerifyCommand_JSONOutput(t *testing.T) {
	oldFormat := outputFormat
	defer func() { outputFormat = oldFormat }()

	rootCmd := newTestRootCommand()
	rootCmd.AddCommand(NewVerifyCommandWithDeps(config.DefaultConfig(), codeDeps{
		clock:  fixedClock(59),
		getenv: envMap(map[string]string{config.DefaultSecretEnv: rfcSecret}),
	}))

	output, err := executeCommand(rootCmd, "verify", "000000", "-o", "json")
	if !errors.Is(err, errCodeMismatch) {
		t.Fatalf("error = %v, want %v", err, errCodeMismatch)
	}

	// cobra appends the error and usage text after the JSON document
	var got verifyOutput
	dec := json.NewDecoder(strings.NewReader(output))
	if err := dec.Decode(&got); err != nil {
		t.Fatalf("output is not valid JSON: %v\ngot: %s", err, output)
	}
	if got.Valid {
		t.Error("expected valid=false")
	}
	if got.Skew != 1 {
		t.Errorf("skew = %d, want 1", got.Skew)
	}
}
