package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// LoadBrix loads the brix configuration. Files are merged over the
// defaults, so a file only needs the values it changes.
// Search order: customPath -> ~/.brix/configs/brix.yaml -> ./configs/brix.yaml -> embedded default
func LoadBrix(customPath string) (BrixConfig, error) {
	cfg := DefaultBrixConfig()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	for _, path := range []string{userConfigPath("brix.yaml"), filepath.Join("configs", "brix.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Warn("skipping config", "path", path, "err", err)
			}
			continue
		}
		candidate := DefaultBrixConfig()
		if err := yaml.Unmarshal(data, &candidate); err != nil {
			log.Warn("skipping config", "path", path, "err", err)
			continue
		}
		if err := candidate.Validate(); err != nil {
			log.Warn("skipping config", "path", path, "err", err)
			continue
		}
		return candidate, nil
	}

	if err := yaml.Unmarshal(defaultBrixYAML, &cfg); err != nil {
		return DefaultBrixConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".brix", "configs", filename)
}
