package core

import "sort"

// Handle refers to an occupant owned by a Pit. A handle stays valid until
// the occupant is removed; afterwards lookups through it fail instead of
// reaching a recycled slot.
type Handle struct {
	index int
	gen   uint32
}

type slot struct {
	occ *Occupant
	gen uint32
}

// Pit is one player's playing field: the arena of occupants, the index from
// cells to occupants, the scroll position, the cursor and the round clocks.
//
// Every cell covered by a live occupant maps to that occupant's handle and
// to nothing else. All mutations that move occupants go through the pit so
// the index never disagrees with the occupants.
type Pit struct {
	rules  Rules
	colors ColorSupplier

	slots   []slot
	free    []int
	order   []Handle
	content map[RowCol]Handle

	cursor    RowCol
	scroll    int
	enabled   bool
	raise     bool
	raiseHeld bool

	peak     int
	panic    int
	recovery int
}

// NewPit creates an empty pit scrolled so that row 0 is the lowest visible row.
func NewPit(rules Rules, colors ColorSupplier) *Pit {
	return &Pit{
		rules:   rules,
		colors:  colors,
		content: make(map[RowCol]Handle),
		cursor:  RC(-PitRows/2, PitCols/2-1),
		scroll:  (1 - PitRows) * RowHeight,
		enabled: true,
		peak:    1,
		panic:   rules.PanicTime,
	}
}

// Rules returns the timings the pit was created with.
func (p *Pit) Rules() Rules { return p.rules }

// Get resolves a handle. It returns nil if the occupant has been removed.
func (p *Pit) Get(h Handle) *Occupant {
	if h.gen == 0 || h.index < 0 || h.index >= len(p.slots) {
		return nil
	}
	s := p.slots[h.index]
	if s.gen != h.gen {
		return nil
	}
	return s.occ
}

// Handles returns the live occupants in spawn order.
func (p *Pit) Handles() []Handle {
	return append([]Handle(nil), p.order...)
}

// Len returns the number of live occupants.
func (p *Pit) Len() int { return len(p.order) }

// At returns the occupant claiming rc.
func (p *Pit) At(rc RowCol) (Handle, bool) {
	h, ok := p.content[rc]
	return h, ok
}

// OccupantAt returns the occupant claiming rc, or nil.
func (p *Pit) OccupantAt(rc RowCol) *Occupant {
	h, ok := p.content[rc]
	if !ok {
		return nil
	}
	return p.Get(h)
}

// BlockAt returns the block at rc, or nil if the cell is empty or garbage.
func (p *Pit) BlockAt(rc RowCol) *Occupant {
	o := p.OccupantAt(rc)
	if o == nil || o.kind != KindBlock {
		return nil
	}
	return o
}

// GarbageAt returns the garbage covering rc, or nil.
func (p *Pit) GarbageAt(rc RowCol) *Occupant {
	o := p.OccupantAt(rc)
	if o == nil || o.kind != KindGarbage {
		return nil
	}
	return o
}

// SpawnBlock places a new block. The cell must be inside the pit columns
// and unclaimed.
func (p *Pit) SpawnBlock(color Color, rc RowCol, state State) (Handle, error) {
	return p.insert(newBlock(color, rc, state))
}

// SpawnRandomBlock places a block with the next color from the supplier.
func (p *Pit) SpawnRandomBlock(rc RowCol, state State) (Handle, error) {
	return p.SpawnBlock(p.colors.NextSpawn(), rc, state)
}

// SpawnGarbage places a resting brick with its top-left corner at rc.
// Its loot is drawn from the supplier, one color per cell.
func (p *Pit) SpawnGarbage(rc RowCol, columns, rows int) (Handle, error) {
	if columns < 1 || rows < 1 {
		return Handle{}, invariant("spawn garbage", ErrBadShape)
	}
	loot := make([]Color, columns*rows)
	for i := range loot {
		loot[i] = p.colors.NextEmerge()
	}
	g, err := newGarbage(rc, columns, rows, loot)
	if err != nil {
		return Handle{}, err
	}
	return p.insert(g)
}

func (p *Pit) insert(o *Occupant) (Handle, error) {
	if o.rc.C < 0 || o.rc.C+o.Columns() > PitCols {
		return Handle{}, invariant("spawn at "+o.rc.String(), ErrOutOfPit)
	}
	cells := o.Cells()
	for _, rc := range cells {
		if _, claimed := p.content[rc]; claimed {
			return Handle{}, invariant("spawn at "+rc.String(), ErrCellClaimed)
		}
	}

	var h Handle
	if n := len(p.free); n > 0 {
		h.index = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		h.index = len(p.slots)
		p.slots = append(p.slots, slot{})
	}
	s := &p.slots[h.index]
	s.gen++
	s.occ = o
	h.gen = s.gen

	for _, rc := range cells {
		p.content[rc] = h
	}
	p.order = append(p.order, h)

	if o.state != StatePreview && o.rc.R < p.peak {
		p.peak = o.rc.R
	}
	return h, nil
}

// release drops the occupant from the arena. Its cells must already be
// unclaimed.
func (p *Pit) release(h Handle) {
	p.slots[h.index].occ = nil
	p.free = append(p.free, h.index)
	for i, o := range p.order {
		if o == h {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

func (p *Pit) claim(rc RowCol, h Handle, op string) error {
	if other, claimed := p.content[rc]; claimed && other != h {
		return invariant(op+" to "+rc.String(), ErrCellClaimed)
	}
	p.content[rc] = h
	return nil
}

func (p *Pit) unclaim(rc RowCol, h Handle, op string) error {
	if other, claimed := p.content[rc]; !claimed || other != h {
		return invariant(op+" from "+rc.String(), ErrCellVacant)
	}
	delete(p.content, rc)
	return nil
}

// resolve checks that h is live and that the index agrees with its anchor.
func (p *Pit) resolve(h Handle, op string) (*Occupant, error) {
	o := p.Get(h)
	if o == nil {
		return nil, invariant(op, ErrStaleOccupant)
	}
	if at, ok := p.content[o.rc]; !ok || at != h {
		return nil, invariant(op, ErrStaleOccupant)
	}
	return o, nil
}

// CanFall reports whether every cell directly beneath the occupant is
// unclaimed and still inside the pit.
func (p *Pit) CanFall(h Handle) bool {
	o := p.Get(h)
	if o == nil {
		return false
	}
	below := o.LowestRow() + 1
	if below > p.Bottom() {
		return false
	}
	for c := o.rc.C; c < o.rc.C+o.Columns(); c++ {
		if _, claimed := p.content[RC(below, c)]; claimed {
			return false
		}
	}
	return true
}

// Fall moves the occupant down by one row.
func (p *Pit) Fall(h Handle) error {
	o, err := p.resolve(h, "fall")
	if err != nil {
		return err
	}
	below := o.LowestRow() + 1
	for c := o.rc.C; c < o.rc.C+o.Columns(); c++ {
		if _, claimed := p.content[RC(below, c)]; claimed {
			return invariant("fall to "+RC(below, c).String(), ErrCellClaimed)
		}
	}
	for c := o.rc.C; c < o.rc.C+o.Columns(); c++ {
		if err := p.unclaim(RC(o.rc.R, c), h, "fall"); err != nil {
			return err
		}
		if err := p.claim(RC(below, c), h, "fall"); err != nil {
			return err
		}
	}
	o.rc.R++
	return nil
}

// Swap exchanges two blocks together with their chaining flags.
func (p *Pit) Swap(left, right Handle) error {
	l, err := p.resolve(left, "swap")
	if err != nil {
		return err
	}
	r, err := p.resolve(right, "swap")
	if err != nil {
		return err
	}
	if l.kind != KindBlock || r.kind != KindBlock {
		return invariant("swap", ErrBadState)
	}
	l.rc, r.rc = r.rc, l.rc
	l.block.Chaining, r.block.Chaining = r.block.Chaining, l.block.Chaining
	p.content[l.rc] = left
	p.content[r.rc] = right
	return nil
}

// Shift moves a block sideways into an unclaimed neighbor cell.
func (p *Pit) Shift(h Handle, to RowCol) error {
	o, err := p.resolve(h, "shift")
	if err != nil {
		return err
	}
	if o.kind != KindBlock {
		return invariant("shift", ErrBadState)
	}
	if to.C < 0 || to.C >= PitCols {
		return invariant("shift to "+to.String(), ErrOutOfPit)
	}
	if err := p.claim(to, h, "shift"); err != nil {
		return err
	}
	if err := p.unclaim(o.rc, h, "shift"); err != nil {
		return err
	}
	o.rc = to
	return nil
}

// RemoveDead purges every dead occupant and returns copies of them in spawn
// order, so callers can report what disappeared.
func (p *Pit) RemoveDead() ([]Occupant, error) {
	var dead []Occupant
	kept := p.order[:0]
	for _, h := range p.order {
		o := p.slots[h.index].occ
		if o.state != StateDead {
			kept = append(kept, h)
			continue
		}
		for _, rc := range o.Cells() {
			if err := p.unclaim(rc, h, "remove"); err != nil {
				return dead, err
			}
		}
		dead = append(dead, *o.clone())
		p.slots[h.index].occ = nil
		p.free = append(p.free, h.index)
	}
	p.order = kept
	if len(dead) > 0 {
		p.RefreshPeak()
	}
	return dead, nil
}

// Shrink removes the lowest row of a garbage brick and returns the loot of
// that row. The brick disappears entirely when its last row is gone.
func (p *Pit) Shrink(h Handle) (loot []Color, removed bool, err error) {
	o, err := p.resolve(h, "shrink")
	if err != nil {
		return nil, false, err
	}
	if o.kind != KindGarbage {
		return nil, false, invariant("shrink", ErrBadState)
	}
	low := o.LowestRow()
	for c := o.rc.C; c < o.rc.C+o.Columns(); c++ {
		if err := p.unclaim(RC(low, c), h, "shrink"); err != nil {
			return nil, false, err
		}
	}
	loot = o.garbage.shrink()
	if o.garbage.Rows == 0 {
		p.release(h)
		p.RefreshPeak()
		return loot, true, nil
	}
	return loot, false, nil
}

// Ordered returns the live occupants sorted from the lowest footprint up,
// left to right within a row. Falls resolve in this order so that the
// lower object always moves first.
func (p *Pit) Ordered() []Handle {
	hs := p.Handles()
	sort.SliceStable(hs, func(i, j int) bool {
		a, b := p.slots[hs[i].index].occ, p.slots[hs[j].index].occ
		if a.LowestRow() != b.LowestRow() {
			return a.LowestRow() > b.LowestRow()
		}
		return a.rc.C < b.rc.C
	})
	return hs
}

// UntagAll clears the transient tags of every occupant.
func (p *Pit) UntagAll() {
	for _, h := range p.order {
		p.slots[h.index].occ.clearTags()
	}
}

// Cursor returns the left cell of the swap cursor.
func (p *Pit) Cursor() RowCol { return p.cursor }

// MoveCursor moves the cursor one step. Moving past the pit edge or the
// visible rows is refused.
func (p *Pit) MoveCursor(d Dir) bool {
	to := p.cursor.Step(d)
	if to == p.cursor {
		return false
	}
	if to.C < 0 || to.C > PitCols-2 || to.R < p.Top() || to.R > p.Bottom() {
		return false
	}
	p.cursor = to
	return true
}

// SetCursor places the cursor, clamped into the legal range.
func (p *Pit) SetCursor(rc RowCol) {
	p.cursor = RC(clamp(rc.R, p.Top(), p.Bottom()), clamp(rc.C, 0, PitCols-2))
}

// Scroll returns the scroll offset in points.
func (p *Pit) Scroll() int { return p.scroll }

// Top returns the highest fully visible row.
func (p *Pit) Top() int { return ceilDiv(p.scroll, RowHeight) }

// Bottom returns the lowest visible row. The preview row is below it.
func (p *Pit) Bottom() int { return floorDiv(p.scroll, RowHeight) + PitRows - 1 }

// Enabled reports whether the pit scrolls.
func (p *Pit) Enabled() bool { return p.enabled }

// SetEnabled starts or pauses scrolling.
func (p *Pit) SetEnabled(enabled bool) { p.enabled = enabled }

// SetScrollSpeed changes the normal scroll speed, for difficulty progression.
func (p *Pit) SetScrollSpeed(speed int) {
	if speed > 0 {
		p.rules.ScrollSpeed = speed
	}
}

// IsRaising reports whether the stack is being raised manually.
func (p *Pit) IsRaising() bool { return p.raise }

// SetRaise presses or releases the raise button. Pressing it forfeits any
// recovery time left.
func (p *Pit) SetRaise(raise bool) {
	p.raiseHeld = raise
	if raise {
		p.raise = true
		p.recovery = 0
	}
}

// StopRaise ends a raise at a row boundary unless the button is still held.
func (p *Pit) StopRaise() {
	if !p.raiseHeld {
		p.raise = false
	}
}

// Peak returns the highest occupied row as of the last refresh.
func (p *Pit) Peak() int { return p.peak }

// RefreshPeak recomputes the highest occupied row.
func (p *Pit) RefreshPeak() {
	peak := p.Bottom() + 1
	for _, h := range p.order {
		o := p.slots[h.index].occ
		if o.state != StatePreview && o.rc.R < peak {
			peak = o.rc.R
		}
	}
	p.peak = peak
}

// IsFull reports whether a resting occupant has been pushed above the top.
func (p *Pit) IsFull() bool {
	for _, h := range p.order {
		o := p.slots[h.index].occ
		if o.state == StateRest && o.rc.R < p.Top() {
			return true
		}
	}
	return false
}

// Panic returns the remaining grace ticks while full.
func (p *Pit) Panic() int { return p.panic }

// Recovery returns the remaining ticks of paused scrolling.
func (p *Pit) Recovery() int { return p.recovery }

// ReplenishRecovery grants a scrolling pause after a good match. It does
// nothing while the player raises the stack.
func (p *Pit) ReplenishRecovery() {
	if p.raise {
		return
	}
	p.recovery = p.rules.BreakTime + p.rules.RecoveryTime
}

// Update advances all occupant timers and the scroll position by one tick.
func (p *Pit) Update() error {
	for _, h := range p.order {
		o := p.slots[h.index].occ
		if o.state == StateDead {
			continue
		}
		if err := o.update(); err != nil {
			return err
		}
	}
	if p.enabled {
		if p.raise {
			p.scroll += p.rules.RaiseSpeed
		} else {
			p.scroll += p.rules.ScrollSpeed
		}
	}
	if p.cursor.R < p.Top() {
		p.cursor.R = p.Top()
	}
	return nil
}

// Clone returns an independent deep copy of the pit, including the color
// supplier position.
func (p *Pit) Clone() *Pit {
	c := *p
	c.colors = p.colors.Clone()
	c.slots = make([]slot, len(p.slots))
	for i, s := range p.slots {
		c.slots[i].gen = s.gen
		if s.occ != nil {
			c.slots[i].occ = s.occ.clone()
		}
	}
	c.free = append([]int(nil), p.free...)
	c.order = append([]Handle(nil), p.order...)
	c.content = make(map[RowCol]Handle, len(p.content))
	for rc, h := range p.content {
		c.content[rc] = h
	}
	return &c
}

// CheckConsistency verifies the cell index against every occupant
// footprint. It is meant for tests and replay verification.
func (p *Pit) CheckConsistency() error {
	claimed := 0
	for _, h := range p.order {
		o := p.Get(h)
		if o == nil {
			return invariant("check", ErrStaleOccupant)
		}
		for _, rc := range o.Cells() {
			if at, ok := p.content[rc]; !ok || at != h {
				return invariant("check "+rc.String(), ErrCellVacant)
			}
			claimed++
		}
	}
	if claimed != len(p.content) {
		return invariant("check", ErrCellClaimed)
	}
	return nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
