package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Locate picks the config file to use: the explicit flag value, then
// PERL2PY_CONFIG (a .env file in the working directory is honoured), then the
// nearest perl2py.toml from startDir upward. An empty result means defaults.
func Locate(flagValue, startDir string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	_ = godotenv.Load()
	if env := os.Getenv(EnvConfig); env != "" {
		return env, nil
	}

	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, DefaultName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}
