package core

// BlockDirector drives the game logic of one pit: it spawns rows, makes
// unsupported objects fall, resolves matches and chains, dissolves garbage
// and decides when the pit is lost.
//
// The director only thinks in rows and columns. All state lives in the Pit;
// the director keeps the chain bookkeeping and the spawn position.
type BlockDirector struct {
	pit    *Pit
	events EventQueue

	spawnedRow  int  // lowest row that has a preview row spawned below it
	opened      bool // the opening preview row is in place
	chain       int
	chainActive bool
	panicking   bool
	over        bool
}

// NewBlockDirector takes command of pit.
func NewBlockDirector(pit *Pit) *BlockDirector {
	return &BlockDirector{pit: pit, spawnedRow: pit.Bottom()}
}

// Pit returns the pit under command.
func (d *BlockDirector) Pit() *Pit { return d.pit }

// Events returns the queue of events produced since the last drain.
func (d *BlockDirector) Events() *EventQueue { return &d.events }

// IsPanic reports whether the pit is full and the grace period runs.
func (d *BlockDirector) IsPanic() bool { return d.panicking }

// Over reports whether the player has lost.
func (d *BlockDirector) Over() bool { return d.over }

// Chain returns the number of chaining matches in the running chain.
func (d *BlockDirector) Chain() int { return d.chain }

// Update runs the logic for one tick. An error means the pit is
// inconsistent; the tick is abandoned and the pit must not be used further.
func (d *BlockDirector) Update() error {
	if err := d.pit.Update(); err != nil {
		return err
	}
	d.pit.UntagAll()

	if err := d.spawnRows(); err != nil {
		return err
	}
	if err := d.examineFinish(); err != nil {
		return err
	}
	if err := d.convertGarbage(); err != nil {
		return err
	}
	if err := d.handleFallers(); err != nil {
		return err
	}
	if err := d.handleHots(); err != nil {
		return err
	}

	chaining, breaking, full := d.examinePit()
	if d.chainActive && !chaining && !breaking {
		d.events.Push(ChainFinished{Counter: d.chain})
		d.chain = 0
		d.chainActive = false
	}

	d.updatePanic(full)
	return nil
}

// spawnRows activates the preview row once it scrolls into view and puts a
// fresh preview row below it. Cells of the new row that are already taken,
// as by a scenario setup, keep their occupant; the rest of the row spawns.
// A raise ends at every row boundary crossed by scrolling. The opening
// preview row is not such a boundary.
func (d *BlockDirector) spawnRows() error {
	for d.spawnedRow < d.pit.Bottom()+1 {
		for c := 0; c < PitCols; c++ {
			o := d.pit.BlockAt(RC(d.spawnedRow, c))
			if o == nil || o.state != StatePreview {
				continue
			}
			if err := o.SetState(StateRest, 1); err != nil {
				return err
			}
			o.Tag(TagHot)
		}

		d.spawnedRow++
		for c := 0; c < PitCols; c++ {
			rc := RC(d.spawnedRow, c)
			if _, claimed := d.pit.At(rc); claimed {
				continue
			}
			if _, err := d.pit.SpawnRandomBlock(rc, StatePreview); err != nil {
				return err
			}
		}
		if d.opened {
			d.pit.StopRaise()
		}
		d.opened = true
	}
	return nil
}

// examineFinish handles objects whose current state ran out this tick.
func (d *BlockDirector) examineFinish() error {
	rules := d.pit.rules
	for _, h := range d.pit.Ordered() {
		o := d.pit.Get(h)
		if !o.IsArriving() {
			continue
		}
		switch o.state {
		case StateFall:
			if d.pit.CanFall(h) {
				if err := d.pit.Fall(h); err != nil {
					return err
				}
				if err := o.ContinueState(RowHeight); err != nil {
					return err
				}
				continue
			}
			switch o.kind {
			case KindBlock:
				if err := o.SetState(StateLand, rules.LandTime); err != nil {
					return err
				}
				o.Tag(TagHot)
			case KindGarbage:
				if err := o.SetState(StateRest, 1); err != nil {
					return err
				}
			}
		case StateSwapLeft, StateSwapRight:
			if err := o.SetState(StateRest, 1); err != nil {
				return err
			}
			o.Tag(TagHot | TagFall)
		}
	}

	dead, err := d.pit.RemoveDead()
	if err != nil {
		return err
	}
	for _, o := range dead {
		if o.kind == KindBlock && o.block.Color != ColorFake {
			d.events.Push(BlockDied{At: o.rc, Color: o.block.Color})
		}
	}
	for _, o := range dead {
		for c := o.rc.C; c < o.rc.C+o.Columns(); c++ {
			d.triggerFalls(RC(o.rc.R-1, c), true)
		}
	}
	return nil
}

// triggerFalls marks the objects stacked on top of rc as potentially falling.
func (d *BlockDirector) triggerFalls(rc RowCol, chaining bool) {
	for {
		o := d.pit.OccupantAt(rc)
		if o == nil || !o.IsFallible() {
			return
		}
		o.Tag(TagFall)
		if o.kind == KindBlock && chaining {
			o.block.Chaining = true
		}
		rc = RC(o.rc.R-1, rc.C)
	}
}

// convertGarbage turns the lowest row of every expired dissolving brick
// into blocks.
func (d *BlockDirector) convertGarbage() error {
	for _, h := range d.pit.Ordered() {
		o := d.pit.Get(h)
		if o == nil || o.kind != KindGarbage || o.state != StateBreak || !o.IsArriving() {
			continue
		}

		d.events.Push(GarbageDissolved{At: o.rc, Columns: o.Columns(), Rows: o.Rows()})
		low := RC(o.LowestRow(), o.rc.C)
		loot, removed, err := d.pit.Shrink(h)
		if err != nil {
			return err
		}
		for i, color := range loot {
			bh, err := d.pit.SpawnBlock(color, low.Add(0, i), StateRest)
			if err != nil {
				return err
			}
			b := d.pit.Get(bh)
			b.block.Chaining = true
			b.Tag(TagHot | TagFall)
		}
		if removed {
			continue
		}
		if err := o.SetState(StateRest, 1); err != nil {
			return err
		}
		o.Tag(TagFall)
	}
	return nil
}

// handleFallers sets everything without support in motion, lowest first so
// that stacks fall together. Objects that fall cannot match this tick.
func (d *BlockDirector) handleFallers() error {
	rules := d.pit.rules
	for _, h := range d.pit.Ordered() {
		o := d.pit.Get(h)
		if !o.IsFallible() {
			continue
		}
		if !d.pit.CanFall(h) {
			if o.HasTag(TagFall) {
				o.Tag(TagHot)
			}
			continue
		}
		if err := d.pit.Fall(h); err != nil {
			return err
		}
		if err := o.SetStateSpeed(StateFall, RowHeight, rules.FallSpeed); err != nil {
			return err
		}
		o.Untag(TagHot)
	}
	return nil
}

// handleHots resolves matches started by hot blocks. Matched blocks break;
// resting garbage touching them, directly or through other garbage,
// dissolves.
func (d *BlockDirector) handleHots() error {
	rules := d.pit.rules
	builder := NewMatchBuilder(d.pit)
	var hots []Handle
	for _, h := range d.pit.Ordered() {
		o := d.pit.Get(h)
		if o.kind == KindBlock && o.HasTag(TagHot) {
			hots = append(hots, h)
			builder.Ignite(h)
		}
	}

	if builder.Combo() > 0 {
		matched := builder.Result()
		for _, h := range matched {
			if err := d.pit.Get(h).SetState(StateBreak, rules.BreakTime); err != nil {
				return err
			}
		}
		for _, h := range matched {
			o := d.pit.Get(h)
			for _, dir := range axisDirs {
				if g := d.pit.GarbageAt(o.rc.Step(dir)); g != nil {
					d.touchGarbage(g)
				}
			}
		}
		for _, h := range d.pit.Ordered() {
			o := d.pit.Get(h)
			if o.kind != KindGarbage || !o.HasTag(TagTouch) {
				continue
			}
			o.Untag(TagTouch)
			if err := o.SetState(StateBreak, rules.DissolveTime); err != nil {
				return err
			}
		}

		combo, chaining := builder.Combo(), builder.Chaining()
		d.events.Push(Match{Combo: combo, Chaining: chaining})
		d.chainActive = true
		if chaining {
			d.chain++
		}
		if combo >= 4 || chaining {
			d.pit.ReplenishRecovery()
		}
	}

	for _, h := range hots {
		o := d.pit.Get(h)
		if !builder.Contains(o.rc) {
			o.block.Chaining = false
		}
	}
	return nil
}

// touchGarbage marks g and every resting brick connected to it.
func (d *BlockDirector) touchGarbage(g *Occupant) {
	if g.state != StateRest || g.HasTag(TagTouch) {
		return
	}
	g.Tag(TagTouch)
	for _, rc := range g.Cells() {
		for _, dir := range axisDirs {
			if n := d.pit.GarbageAt(rc.Step(dir)); n != nil && n != g {
				d.touchGarbage(n)
			}
		}
	}
}

// examinePit reports whether any block is chaining, any object is breaking
// and whether the pit is full.
func (d *BlockDirector) examinePit() (chaining, breaking, full bool) {
	for _, h := range d.pit.order {
		o := d.pit.Get(h)
		if o.kind == KindBlock && o.block.Chaining {
			chaining = true
		}
		if o.state == StateBreak {
			breaking = true
		}
	}
	return chaining, breaking, d.pit.IsFull()
}

// updatePanic runs the recovery and panic clocks. Recovery pauses scrolling;
// a full pit pauses scrolling and counts down to game over.
func (d *BlockDirector) updatePanic(full bool) {
	p := d.pit
	d.panicking = false
	switch {
	case p.recovery > 0:
		p.recovery--
		p.enabled = false
	case full:
		d.panicking = true
		p.enabled = false
		if p.panic > 0 {
			p.panic--
		} else {
			d.over = true
		}
	default:
		p.panic = p.rules.PanicTime
		p.enabled = true
	}
}

// Swap exchanges the blocks at rc and its right neighbor. One of the two
// cells may be empty, in which case the block slides over. The command is
// refused without any change if a cell holds garbage or a block that is
// not in a swappable state.
func (d *BlockDirector) Swap(rc RowCol) (bool, error) {
	if rc.C < 0 || rc.C > PitCols-2 {
		return false, nil
	}
	lrc, rrc := rc, rc.Step(DirRight)
	lh, lok := d.pit.At(lrc)
	rh, rok := d.pit.At(rrc)
	if !lok && !rok {
		return false, nil
	}
	left, right := d.pit.Get(lh), d.pit.Get(rh)
	if lok && !left.IsSwappable() {
		return false, nil
	}
	if rok && !right.IsSwappable() {
		return false, nil
	}

	swapTime := d.pit.rules.SwapTime
	switch {
	case lok && rok:
		if err := d.pit.Swap(lh, rh); err != nil {
			return false, err
		}
	case lok:
		if err := d.pit.Shift(lh, rrc); err != nil {
			return false, err
		}
	default:
		if err := d.pit.Shift(rh, lrc); err != nil {
			return false, err
		}
	}
	if lok {
		if err := left.SetState(StateSwapRight, swapTime); err != nil {
			return false, err
		}
	}
	if rok {
		if err := right.SetState(StateSwapLeft, swapTime); err != nil {
			return false, err
		}
	}

	d.events.Push(SwapStarted{At: rc})
	return true, nil
}

// MoveCursor moves the player's cursor. Moves that would leave the pit are
// ignored.
func (d *BlockDirector) MoveCursor(dir Dir) bool {
	if !d.pit.MoveCursor(dir) {
		return false
	}
	d.events.Push(CursorMoved{To: d.pit.Cursor()})
	return true
}

// SwapAtCursor swaps the blocks under the cursor.
func (d *BlockDirector) SwapAtCursor() (bool, error) {
	return d.Swap(d.pit.Cursor())
}

// DropGarbage spawns a brick above the highest object, already falling.
// Bricks narrower than the pit alternate between the left and right edge
// by the row they appear in.
func (d *BlockDirector) DropGarbage(columns, rows int) error {
	if columns < 1 || columns > PitCols || rows < 1 {
		return invariant("drop garbage", ErrBadShape)
	}
	d.pit.RefreshPeak()
	top := d.pit.peak
	if t := d.pit.Top(); t < top {
		top = t
	}
	r := top - rows
	c := 0
	if r%2 != 0 {
		c = PitCols - columns
	}
	h, err := d.pit.SpawnGarbage(RC(r, c), columns, rows)
	if err != nil {
		return err
	}
	return d.pit.Get(h).SetStateSpeed(StateFall, RowHeight, d.pit.rules.FallSpeed)
}
