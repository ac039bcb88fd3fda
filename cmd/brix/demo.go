package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-brix/internal/multiplayer"
	"github.com/vovakirdan/tui-brix/internal/platform/tui"
	"github.com/vovakirdan/tui-brix/internal/registry"
)

var demoCmd = &cobra.Command{
	Use:   "demo <scenario>",
	Short: "Watch a scripted scenario",
	Long: `Play one of the built-in scenarios. Scenarios run on their own;
P pauses, R restarts once the round is over.

Run 'brix list' to see the scenarios.

Examples:
  brix demo versus
  brix demo chain-garbage --seed 7`,
	Args: cobra.ExactArgs(1),
	RunE: runDemo,
}

func runDemo(_ *cobra.Command, args []string) error {
	id := args[0]
	if !registry.Exists(id) {
		return fmt.Errorf("unknown scenario %q, run 'brix list' to see them", id)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	game, err := registry.Create(id)
	if err != nil {
		return err
	}
	_, err = tui.Run(game, nil, runtimeConfig(), multiplayer.MatchModeDemo, tui.NewKeyMapper(cfg.Keys))
	return err
}
