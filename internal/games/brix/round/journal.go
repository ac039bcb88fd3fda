package round

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vovakirdan/tui-brix/internal/games/brix/core"
)

// Journal records everything needed to replay a round: its settings, every
// input in game time order and how it ended.
type Journal struct {
	Settings Settings
	Inputs   []GameInput

	Finished bool
	EndTime  int
	Winner   int
}

// NewJournal starts an empty journal.
func NewJournal(s Settings) *Journal {
	return &Journal{Settings: s, Winner: core.NoOne}
}

// Add inserts an input, keeping the list ordered by game time. Inputs of
// equal time stay in arrival order.
func (j *Journal) Add(in GameInput) {
	i := sort.Search(len(j.Inputs), func(i int) bool {
		return j.Inputs[i].GameTime > in.GameTime
	})
	j.Inputs = append(j.Inputs, GameInput{})
	copy(j.Inputs[i+1:], j.Inputs[i:])
	j.Inputs[i] = in
}

// InputsAt returns the inputs stamped with game time t.
func (j *Journal) InputsAt(t int) []GameInput {
	lo := sort.Search(len(j.Inputs), func(i int) bool { return j.Inputs[i].GameTime >= t })
	hi := sort.Search(len(j.Inputs), func(i int) bool { return j.Inputs[i].GameTime > t })
	return j.Inputs[lo:hi]
}

// Finish marks the end of the round.
func (j *Journal) Finish(endTime, winner int) {
	j.Finished = true
	j.EndTime = endTime
	j.Winner = winner
}

// Meta returns the meta record of the journal.
func (j *Journal) Meta() GameMeta {
	return j.Settings.Meta(j.Winner)
}

type setting struct {
	name string
	p    *int
}

func ruleFields(r *core.Rules) []setting {
	return []setting{
		{"rule.fall_speed", &r.FallSpeed},
		{"rule.scroll_speed", &r.ScrollSpeed},
		{"rule.raise_speed", &r.RaiseSpeed},
		{"rule.intro_time", &r.IntroTime},
		{"rule.swap_time", &r.SwapTime},
		{"rule.break_time", &r.BreakTime},
		{"rule.dissolve_time", &r.DissolveTime},
		{"rule.land_time", &r.LandTime},
		{"rule.recovery_time", &r.RecoveryTime},
		{"rule.panic_time", &r.PanicTime},
	}
}

// WriteTo writes the line based text form of the journal.
func (j *Journal) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	s := j.Settings
	fmt.Fprintf(&b, "SET players %d\n", s.Players)
	fmt.Fprintf(&b, "SET seed %d\n", s.Seed)
	fmt.Fprintf(&b, "SET attacks %t\n", s.Attacks)
	fmt.Fprintf(&b, "SET max_scroll_speed %d\n", s.MaxScrollSpeed)
	fmt.Fprintf(&b, "SET ramp_ticks %d\n", s.RampTicks)
	for _, f := range ruleFields(&s.Rules) {
		fmt.Fprintf(&b, "SET %s %d\n", f.name, *f.p)
	}
	b.WriteString("START\n")
	for _, in := range j.Inputs {
		fmt.Fprintf(&b, "INPUT %s\n", in)
	}
	if j.Finished {
		fmt.Fprintf(&b, "END %d %d\n", j.EndTime, j.Winner)
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// ReadJournal parses the text form.
func ReadJournal(r io.Reader) (*Journal, error) {
	j := NewJournal(Settings{Players: MaxPlayers, Rules: core.DefaultRules()})
	started := false
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		verb, rest, _ := strings.Cut(text, " ")
		var err error
		switch verb {
		case "SET":
			if started {
				err = fmt.Errorf("SET after START")
				break
			}
			err = j.set(rest)
		case "START":
			started = true
		case "INPUT":
			if !started || j.Finished {
				err = fmt.Errorf("INPUT outside of the round")
				break
			}
			var in GameInput
			in, err = ParseGameInput(rest)
			if err == nil && in.Player >= j.Settings.Players {
				err = fmt.Errorf("input for player %d", in.Player)
			}
			if err == nil && in.GameTime == TimeASAP {
				err = fmt.Errorf("unstamped input")
			}
			if err == nil {
				j.Add(in)
			}
		case "END":
			var end, winner int
			if _, serr := fmt.Sscanf(rest, "%d %d", &end, &winner); serr != nil {
				err = fmt.Errorf("bad END: %w", serr)
				break
			}
			j.Finish(end, winner)
		default:
			err = fmt.Errorf("unknown record %q", verb)
		}
		if err != nil {
			return nil, fmt.Errorf("round: journal line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !started {
		return nil, fmt.Errorf("round: journal has no START")
	}
	if err := j.Settings.Validate(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) set(rest string) error {
	name, value, ok := strings.Cut(strings.TrimSpace(rest), " ")
	if !ok {
		return fmt.Errorf("SET needs a name and a value")
	}
	value = strings.TrimSpace(value)
	s := &j.Settings

	switch name {
	case "attacks":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("attacks: %w", err)
		}
		s.Attacks = v
		return nil
	case "seed":
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		s.Seed = uint32(v)
		return nil
	}

	fields := append([]setting{
		{"players", &s.Players},
		{"max_scroll_speed", &s.MaxScrollSpeed},
		{"ramp_ticks", &s.RampTicks},
	}, ruleFields(&s.Rules)...)
	for _, f := range fields {
		if f.name != name {
			continue
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*f.p = v
		return nil
	}
	return fmt.Errorf("unknown setting %q", name)
}
