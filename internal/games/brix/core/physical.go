package core

// State is the lifecycle state of an occupant. Garbage only uses Rest, Fall,
// Break and Dead.
type State uint8

const (
	StatePreview State = iota
	StateRest
	StateSwapLeft
	StateSwapRight
	StateFall
	StateLand
	StateBreak
	StateDead
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePreview:
		return "preview"
	case StateRest:
		return "rest"
	case StateSwapLeft:
		return "swap_left"
	case StateSwapRight:
		return "swap_right"
	case StateFall:
		return "fall"
	case StateLand:
		return "land"
	case StateBreak:
		return "break"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Tag is a set of transient markers used while resolving a single tick.
type Tag uint8

const (
	TagNone  Tag = 0
	TagHot   Tag = 1 << iota // may start a match this tick
	TagFall                  // should fall if it loses support
	TagTouch                 // garbage touched by a match
)

// Physical holds what every occupant has in common: where it is, what it
// is doing and how long until that finishes.
//
// time counts down by speed every tick. Time and speed are integers so
// that fractional arrivals carry over without drift.
type Physical struct {
	rc    RowCol
	state State
	time  int
	speed int
	tags  Tag
}

func newPhysical(rc RowCol, state State) Physical {
	return Physical{rc: rc, state: state, time: 1, speed: 1}
}

// RC returns the anchor cell. Garbage extends down and to the right of it.
func (p *Physical) RC() RowCol { return p.rc }

// State returns the lifecycle state.
func (p *Physical) State() State { return p.state }

// Time returns the remaining countdown.
func (p *Physical) Time() int { return p.time }

// Speed returns the countdown decrement per tick.
func (p *Physical) Speed() int { return p.speed }

// ETA returns the remaining ticks until arrival, possibly fractional.
func (p *Physical) ETA() float64 {
	return float64(p.time) / float64(p.speed)
}

// IsArriving reports whether the current state ran out during the latest tick.
func (p *Physical) IsArriving() bool {
	return p.time <= 0 && p.time > -p.speed
}

// IsFallible reports whether the occupant rests or has just landed, the
// only states from which it can start to fall.
func (p *Physical) IsFallible() bool {
	return p.state == StateRest || p.state == StateLand
}

// HasTag reports whether all bits of t are set.
func (p *Physical) HasTag(t Tag) bool { return p.tags&t == t }

// Tag sets bits.
func (p *Physical) Tag(t Tag) { p.tags |= t }

// Untag clears bits.
func (p *Physical) Untag(t Tag) { p.tags &^= t }

func (p *Physical) clearTags() { p.tags = TagNone }

// enterState is the shared part of a transition. Occupant.SetState wraps it
// with the per-kind checks.
func (p *Physical) enterState(state State, time, speed int) error {
	if p.state == StateDead {
		return invariant("set state "+state.String(), ErrDeadState)
	}
	if time < 1 || speed < 1 {
		return invariant("set state "+state.String(), ErrBadDuration)
	}
	p.state = state
	p.time = time
	p.speed = speed
	return nil
}

// ContinueState extends the running state by bonus time. The result must
// leave the occupant ahead of another arrival.
func (p *Physical) ContinueState(bonus int) error {
	if p.time+bonus <= 0 {
		return invariant("continue state", ErrBadDuration)
	}
	p.time += bonus
	return nil
}

// countdown advances the timer by one tick.
func (p *Physical) countdown() {
	p.time -= p.speed
}
