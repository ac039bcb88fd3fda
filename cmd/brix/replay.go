package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-brix/internal/games/brix/round"
	"github.com/vovakirdan/tui-brix/internal/storage"
)

var (
	flagVerify bool
	flagExport string
)

var replayCmd = &cobra.Command{
	Use:   "replay <match-id>",
	Short: "Re-simulate a stored match",
	Long: `Load the journal of a stored match and simulate it again from its
seed and inputs. The match id may be shortened to any unique prefix, as
shown by 'brix history'.

With --verify the journal is simulated twice and both runs must agree
with each other and with the stored result. With --export the raw
journal is written to a file.

Examples:
  brix replay 3f2a9c1e
  brix replay 3f2a9c1e --verify
  brix replay 3f2a9c1e --export match.brix`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagVerify, "verify", false, "Replay twice and compare with the stored result")
	replayCmd.Flags().StringVar(&flagExport, "export", "", "Write the compressed journal to this file")
}

func runReplay(_ *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.ResolveMatchID(args[0])
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("no match with id %q", args[0])
	case errors.Is(err, storage.ErrAmbiguous):
		return fmt.Errorf("match id %q is ambiguous, use more characters", args[0])
	case err != nil:
		return err
	}

	rec, err := store.MatchByID(id)
	if err != nil {
		return err
	}
	if !rec.HasReplay {
		return fmt.Errorf("match %s has no replay", id)
	}
	blob, err := store.Journal(id)
	if err != nil {
		return err
	}

	if flagExport != "" {
		if err := os.WriteFile(flagExport, blob, 0o600); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("Journal written to %s (%d bytes)\n", flagExport, len(blob))
	}

	journal, err := round.UnmarshalJournal(blob)
	if err != nil {
		return err
	}
	res, err := round.Replay(journal)
	if err != nil {
		return err
	}

	fmt.Printf("Match   %s (%s)\n", rec.MatchID, rec.Mode)
	fmt.Printf("Players %s v %s\n", rec.Player1, rec.Player2)
	fmt.Printf("Seed    %d\n", journal.Settings.Seed)
	fmt.Printf("Inputs  %d\n", len(journal.Inputs))
	fmt.Printf("Ended   tick %d\n", res.EndTime)
	fmt.Printf("Winner  %s\n", winnerLabel(rec, res.Winner))
	for i, s := range res.Stats {
		fmt.Printf("  P%d  score %-6d matches %-4d max combo %-3d max chain %-3d\n",
			i+1, s.Score, s.Matches, s.MaxCombo, s.MaxChain)
	}
	for i, snap := range res.State.Snapshots() {
		fmt.Printf("  P%d  pit hash %016x\n", i+1, snap.Hash())
	}

	if !flagVerify {
		return nil
	}
	return verifyReplay(rec, journal, res)
}

// verifyReplay simulates the journal again and checks both runs against
// each other and against the stored scores.
func verifyReplay(rec *storage.MatchRecord, journal *round.Journal, first *round.ReplayResult) error {
	second, err := round.Replay(journal)
	if err != nil {
		return err
	}
	if first.State.Hash() != second.State.Hash() || len(first.Hashes) != len(second.Hashes) {
		return errors.New("verify: replays disagree")
	}
	for i := range first.Hashes {
		if first.Hashes[i] != second.Hashes[i] {
			return fmt.Errorf("verify: replays disagree at checkpoint %d", i)
		}
	}

	// An unfinished journal ends at its last input, not where the round
	// was stored.
	if journal.Finished {
		scores := []int{rec.Score1, rec.Score2}
		for i, s := range first.Stats {
			if i < len(scores) && s.Score != scores[i] {
				return fmt.Errorf("verify: P%d scored %d, stored %d", i+1, s.Score, scores[i])
			}
		}
		if first.Winner != rec.Winner {
			return fmt.Errorf("verify: winner %d, stored %d", first.Winner, rec.Winner)
		}
	}

	fmt.Printf("Verified: %d checkpoints, final hash %016x\n", len(first.Hashes), first.State.Hash())
	return nil
}

func winnerLabel(rec *storage.MatchRecord, winner int) string {
	r := *rec
	r.Winner = winner
	if name := r.WinnerName(); name != "" {
		return name
	}
	return "none"
}
