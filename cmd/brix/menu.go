package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-brix/internal/config"
	"github.com/vovakirdan/tui-brix/internal/core"
	"github.com/vovakirdan/tui-brix/internal/games/brix"
	"github.com/vovakirdan/tui-brix/internal/multiplayer"
	"github.com/vovakirdan/tui-brix/internal/platform/tui"
	"github.com/vovakirdan/tui-brix/internal/registry"
	"github.com/vovakirdan/tui-brix/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start brix with an interactive menu",
	Long: `Start brix in interactive menu mode.

Pick local versus, one of the demos or the match history. When a
round is over (or paused) Esc returns to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Q            - Quit

Examples:
  brix menu
  brix menu --difficulty easy
  brix menu --db ./brix.db`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
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
		logger.Warn("match history disabled", "err", err)
		store = nil
	} else {
		defer store.Close()
	}

	keys := tui.NewKeyMapper(cfg.Keys)
	rc := runtimeConfig()

	for {
		res, err := tui.RunMenu(keys, rc)
		if err != nil {
			return err
		}
		rc = res.Config
		if res.Quit || res.Item == nil {
			return nil
		}

		goBack, err := runMenuItem(*res.Item, cfg, store, keys, rc)
		if err != nil {
			return err
		}
		if !goBack {
			return nil
		}
	}
}

// runMenuItem starts what the menu entry names and reports whether the
// user wants the menu back.
func runMenuItem(item tui.MenuItem, cfg config.BrixConfig, store *storage.Store, keys *tui.KeyMapper, rc core.RuntimeConfig) (bool, error) {
	switch item.Kind {
	case tui.MenuLocal:
		game := brix.New(brix.SettingsFromConfig(cfg, rc.Seed))
		return tui.Run(game, store, rc, multiplayer.MatchModeLocal, keys)

	case tui.MenuDemo:
		game, err := registry.Create(item.GameID)
		if err != nil {
			return false, err
		}
		return tui.Run(game, nil, rc, multiplayer.MatchModeDemo, keys)

	case tui.MenuHistory:
		return tui.RunHistory(store, "", rc.ScreenW, rc.ScreenH)
	}
	return false, fmt.Errorf("menu entry %q is not available here", item.Title)
}
