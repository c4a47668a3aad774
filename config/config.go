// Package config persists user settings between runs.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SprintFox/Kitsunet-Share/core"
)

const appDir = "kitsunet"

// DefaultPath is where settings live unless a caller overrides it:
// the platform user config directory, e.g. ~/.config/kitsunet on
// Linux.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config directory: %w", err)
	}

	return filepath.Join(base, appDir, "settings.json"), nil
}

// Load reads settings from path. A missing file is not an error; the
// defaults come back instead.
func Load(path string) (core.Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.DefaultSettings(), err
	}

	var settings core.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return core.DefaultSettings(), fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to path, creating parent directories as needed.
func Save(path string, settings core.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
