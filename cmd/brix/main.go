// brix is a terminal falling-blocks duel: swap blocks, match three and
// bury your rival under garbage.
//
// Usage:
//
//	brix play                  - Local versus, two seats on one keyboard
//	brix demo <scenario>       - Watch a scripted scenario
//	brix list                  - List the demo scenarios
//	brix menu                  - Interactive menu
//	brix history               - Show stored matches
//	brix replay <match-id>     - Re-simulate a stored match
//	brix serve                 - Start the SSH server for online versus
//
// Global flags:
//
//	--seed <value>        - Round seed (0 = pick one from the clock)
//	--db <path>           - Match database (default: ~/.brix/brix.db)
//	--config <path>       - Custom brix.yaml
//	--difficulty <name>   - easy, normal, hard or fixed
//	--log-level <level>   - debug, info, warn, error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-brix/internal/config"
	"github.com/vovakirdan/tui-brix/internal/core"
	sim "github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

var (
	flagSeed       uint32
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "brix",
	Short: "brix - a falling-blocks duel in your terminal",
	Long: `brix is a two player falling-blocks puzzle for the terminal.
Swap neighbouring blocks to line up three or more of a color. Big combos
and chains drop garbage on your rival; the first pit to top out loses.

Available commands:
  play     - Local versus on one keyboard
  demo     - Watch a scripted scenario
  list     - List the demo scenarios
  menu     - Interactive menu
  history  - Show stored matches
  replay   - Re-simulate a stored match
  serve    - Start the SSH server for online versus

Examples:
  brix play
  brix demo versus
  brix history --player ann
  brix replay 3f2a9c1e --verify
  brix serve --metrics :2112`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().Uint32Var(&flagSeed, "seed", 0, "Round seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.brix/brix.db", "Path to the match database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom brix config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the configuration and applies the difficulty preset.
func loadConfig() (config.BrixConfig, error) {
	cfg, err := config.LoadBrix(flagConfig)
	if err != nil {
		return cfg, err
	}
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return cfg, err
	}
	config.ApplyPreset(&cfg, preset)
	return cfg, cfg.Validate()
}

// newLogger creates the stderr logger at the --log-level level.
func newLogger(prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	}), nil
}

// runtimeConfig sizes the screen from the terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	cfg.TickRate = sim.TPS
	cfg.Seed = flagSeed
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	return cfg
}
