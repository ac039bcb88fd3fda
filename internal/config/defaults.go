package config

import (
	_ "embed"
	"time"

	sim "github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

//go:embed defaults/brix.yaml
var defaultBrixYAML []byte

// DefaultBrixConfig returns the hardcoded configuration, identical to the
// embedded defaults/brix.yaml.
func DefaultBrixConfig() BrixConfig {
	return BrixConfig{
		Rules:   sim.DefaultRules(),
		Attacks: true,
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "time",
				MaxAt: 6 * 60 * sim.TPS,
			},
			Scaling: ScalingConfig{
				MaxScrollSpeed: 6,
			},
		},
		Keys: KeysConfig{
			Player1: PlayerKeys{
				Left:  []string{"a"},
				Right: []string{"d"},
				Up:    []string{"w"},
				Down:  []string{"s"},
				Swap:  []string{" "},
				Raise: []string{"e"},
			},
			Player2: PlayerKeys{
				Left:  []string{"left"},
				Right: []string{"right"},
				Up:    []string{"up"},
				Down:  []string{"down"},
				Swap:  []string{"enter"},
				Raise: []string{"/"},
			},
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        2323,
			HostKeyPath: ".ssh/brix_ed25519",
			IdleTimeout: 30 * time.Minute,
			LobbyTTL:    10 * time.Minute,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultBrixYAML
}
