package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFiles returns the .env files to load, in priority order: the configured
// env_file, then .env in the working directory. Files that do not exist are
// left out.
func EnvFiles(cfg *Config) ([]string, error) {
	var candidates []string
	if cfg.EnvFile != "" {
		p, err := expandHome(cfg.EnvFile)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, p)
	}
	candidates = append(candidates, ".env")

	var files []string
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat env file: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
		}
	}
	return files, nil
}

// LoadEnv loads the .env files from EnvFiles into the process environment.
// Variables already set in the environment are not overridden, and earlier
// files win over later ones. Returns the files that were loaded.
func LoadEnv(cfg *Config) ([]string, error) {
	files, err := EnvFiles(cfg)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}
	return files, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
