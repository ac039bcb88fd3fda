// Package config provides YAML configuration loading and difficulty
// management for brix.
package config

import (
	"fmt"
	"time"

	sim "github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

// BrixConfig contains all configuration for brix.
type BrixConfig struct {
	Rules      sim.Rules        `yaml:"rules"`
	Attacks    bool             `yaml:"attacks"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Keys       KeysConfig       `yaml:"keys"`
	Server     ServerConfig     `yaml:"server"`
}

// DifficultyConfig defines how the scroll speed progresses over a round.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = base scroll speed, 1.0 = max scroll speed
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "time" or "none"
	MaxAt int    `yaml:"max_at"` // ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	MaxScrollSpeed int `yaml:"max_scroll_speed"`
}

// KeysConfig holds the key bindings of both seats on a shared keyboard.
// Names follow Bubble Tea key strings ("a", "left", "enter", " ").
type KeysConfig struct {
	Player1 PlayerKeys `yaml:"player1"`
	Player2 PlayerKeys `yaml:"player2"`
}

// PlayerKeys binds the game buttons of one seat.
type PlayerKeys struct {
	Left  []string `yaml:"left"`
	Right []string `yaml:"right"`
	Up    []string `yaml:"up"`
	Down  []string `yaml:"down"`
	Swap  []string `yaml:"swap"`
	Raise []string `yaml:"raise"`
}

// ServerConfig configures the SSH server.
type ServerConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	HostKeyPath string        `yaml:"host_key_path"`
	MetricsAddr string        `yaml:"metrics_addr"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	LobbyTTL    time.Duration `yaml:"lobby_ttl"`
}

// Validate reports unusable values.
func (c BrixConfig) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	d := c.Difficulty
	if d.InitialLevel < 0 || d.InitialLevel > 1 {
		return fmt.Errorf("config: difficulty.initial_level %.2f outside 0..1", d.InitialLevel)
	}
	switch d.Progression.Type {
	case "time", "none", "":
	default:
		return fmt.Errorf("config: unknown difficulty.progression.type %q", d.Progression.Type)
	}
	if d.Enabled && d.Scaling.MaxScrollSpeed < c.Rules.ScrollSpeed {
		return fmt.Errorf("config: difficulty.scaling.max_scroll_speed %d below rules.scroll_speed %d",
			d.Scaling.MaxScrollSpeed, c.Rules.ScrollSpeed)
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. An empty name keeps the config as is.
func ParsePreset(name string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(name); p {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (easy, normal, hard, fixed)", name)
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *BrixConfig, preset DifficultyPreset) {
	switch preset {
	case "":
		return
	case DifficultyFixed:
		cfg.Difficulty.Enabled = false
	default:
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}
}
