package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-brix/internal/games/brix"
	"github.com/vovakirdan/tui-brix/internal/multiplayer"
	"github.com/vovakirdan/tui-brix/internal/platform/tui"
	"github.com/vovakirdan/tui-brix/internal/storage"
)

var (
	flagP1 string
	flagP2 string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Local versus on one keyboard",
	Long: `Start a versus round with both seats on one keyboard. Finished and
aborted rounds are stored with their replay.

Default controls (see the keys section of brix.yaml):
  Player 1   WASD to move, Space to swap, E to raise
  Player 2   Arrows to move, Enter to swap, / to raise
  P          - Pause
  R          - Restart (after game over)
  Esc/B      - Back (while paused or over)
  Q/Ctrl+C   - Quit

Difficulty options:
  easy   - Start slow, speed up to the top
  normal - Start at 30% of the ramp
  hard   - Start at 70% of the ramp
  fixed  - No speed ramp

Examples:
  brix play
  brix play --p1 ann --p2 bob
  brix play --difficulty hard --seed 42`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagP1, "p1", "P1", "Name of the left seat")
	playCmd.Flags().StringVar(&flagP2, "p2", "P2", "Name of the right seat")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger("brix")
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("playing without history", "err", err)
		store = nil
	} else {
		defer store.Close()
	}

	rc := runtimeConfig()
	game := brix.New(brix.SettingsFromConfig(cfg, rc.Seed))
	game.SetNames(flagP1, flagP2)

	if _, err := tui.Run(game, store, rc, multiplayer.MatchModeLocal, tui.NewKeyMapper(cfg.Keys)); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}
