package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-brix/internal/storage"
)

var (
	flagPlayer string
	flagLimit  int
	flagTop    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored matches",
	Long: `List the most recent matches, or only those of one player.
With --top the best single-round scores are shown instead.

Examples:
  brix history
  brix history --player ann --limit 5
  brix history --top`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagPlayer, "player", "", "Only show matches of this player")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of rows to show")
	historyCmd.Flags().BoolVar(&flagTop, "top", false, "Show the top scores")
}

func runHistory(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagTop {
		return printTopScores(store)
	}

	var matches []storage.MatchRecord
	if flagPlayer != "" {
		matches, err = store.PlayerMatches(flagPlayer, flagLimit)
	} else {
		matches, err = store.RecentMatches(flagLimit)
	}
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'brix play' to record the first one!")
		return nil
	}

	fmt.Printf("  %-8s  %-16s  %-6s  %-24s  %-11s  %-10s  %s\n",
		"Match", "Date", "Mode", "Players", "Score", "Winner", "End")
	fmt.Printf("  %-8s  %-16s  %-6s  %-24s  %-11s  %-10s  %s\n",
		"-----", "----", "----", "-------", "-----", "------", "---")
	for _, r := range matches {
		id := r.MatchID
		if len(id) > 8 {
			id = id[:8]
		}
		winner := r.WinnerName()
		if winner == "" {
			winner = "-"
		}
		fmt.Printf("  %-8s  %-16s  %-6s  %-24s  %-11s  %-10s  %s\n",
			id,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Mode,
			r.Player1+" v "+r.Player2,
			fmt.Sprintf("%d-%d", r.Score1, r.Score2),
			winner,
			r.EndReason,
		)
	}

	if flagPlayer != "" {
		if best, err := store.HighScore(flagPlayer); err == nil && best > 0 {
			fmt.Println()
			fmt.Printf("Best score of %s: %d\n", flagPlayer, best)
		}
	}
	return nil
}

func printTopScores(store *storage.Store) error {
	scores, err := store.TopScores(flagLimit)
	if err != nil {
		return err
	}

	fmt.Println("Top Scores")
	fmt.Println()
	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		return nil
	}

	fmt.Printf("  %-4s  %-16s  %-10s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-16s  %-10s  %s\n", "----", "------", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-16s  %-10d  %s\n",
			i+1, entry.Player, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
