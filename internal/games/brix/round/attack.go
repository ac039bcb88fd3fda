package round

import "github.com/vovakirdan/tui-brix/internal/games/brix/core"

type attack struct {
	from    int
	columns int
	rows    int
}

// attackFor converts a scoring event into garbage for the opponent: a combo
// of n >= 4 sends a single row n-1 wide, a finished chain sends a full-width
// brick one row tall per chaining match.
func attackFor(e core.Event) (attack, bool) {
	switch e := e.(type) {
	case core.Match:
		if e.Combo >= 4 {
			return attack{columns: min(e.Combo-1, core.PitCols), rows: 1}, true
		}
	case core.ChainFinished:
		if e.Counter >= 1 {
			return attack{columns: core.PitCols, rows: e.Counter}, true
		}
	}
	return attack{}, false
}
