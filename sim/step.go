package sim

import (
	"math"
)

// AdvanceStep runs one full tick. The stage order is a hard contract:
// changing it changes trajectories under a fixed seed.
//
//  1. Rescan the grid to refresh derived counters and decay fight cells.
//  2. For each creature in list order: sense, decide, resolve the action
//     against the grid. Offspring are collected, not yet placed, so
//     siblings spawned this tick never see each other's positions.
//  3. Remove dead creatures, leaving blank or fight cells behind.
//  4. Place pending offspring near their parents, dropping any that
//     find no room.
//  5. Stochastically add new food.
//  6. Recompute every creature's vision for the next tick.
//  7. Advance the clock.
func (e *Environment) AdvanceStep() {
	e.refreshCounters()

	var pending []*Creature
	for idx := range e.Creatures {
		pending = e.stepCreature(idx, pending)
	}

	e.removeDead()
	e.placeOffspring(pending)
	e.addNewFood()
	e.updateVision()
	e.TimeStep++
}

// refreshCounters re-derives the per-kind cell counts with a full grid
// scan and steps every fight cell's TTL toward blank. Scanning once per
// tick beats incremental bookkeeping spread across every mutator.
func (e *Environment) refreshCounters() {
	var food, walls, creatures, blank int
	for i := range e.Grid.Cells {
		switch e.Grid.Cells[i].Kind {
		case BlankSpace:
			blank++
		case FoodSpace:
			food++
		case CreatureSpace:
			creatures++
		case WallSpace:
			walls++
		case FightSpace:
			// A fight marker counts as blank for occupancy purposes.
			blank++
			if e.Grid.Cells[i].TTL > 0 {
				e.Grid.Cells[i].TTL--
			} else {
				e.Grid.Cells[i] = Space{Kind: BlankSpace}
			}
		}
	}
	e.NumFood = food
	e.NumWalls = walls
	e.NumCreatures = creatures
	e.NumBlank = blank
}

// stepCreature runs one creature's sense/decide/act cycle and resolves
// the chosen action. Offspring are appended to pending and returned.
func (e *Environment) stepCreature(idx int, pending []*Creature) []*Creature {
	c := e.Creatures[idx]

	c.SenseSurroundings()
	action := c.PerformNextAction()

	// A creature that died deciding takes no action; removal happens
	// after the whole list has been stepped.
	if c.Dead() {
		return pending
	}

	switch {
	case action == Kill:
		e.resolveKill(c)
	case action.IsMove():
		e.resolveMove(c, action)
	case action == Reproduce:
		pending = e.spawnOffspring(c, pending)
	}

	return pending
}

// resolveKill lets a creature strike the cell it is looking at. The
// strike lands only when the vision reading shows another creature at
// distance exactly 1 and the victim is still alive; in every other
// circumstance the action already cost its energy and does nothing.
func (e *Environment) resolveKill(attacker *Creature) {
	v := attacker.Vision
	if !v.InView || v.Dist != 1 || v.Kind != CreatureSpace {
		return
	}
	victim, err := e.CreatureByID(v.TargetID)
	if err != nil || victim.Dead() {
		return
	}
	victim.Kill()
	attacker.EatFood(e.Params.EnergyPerKill)
	attacker.markKiller(e.Params.ViolenceColor)
}

// resolveMove computes the candidate cell for an orientation-relative
// movement and applies the collision rules: blank and fight cells are
// claimable, food is consumed on entry, walls reject the move without
// refunding the already-debited cost.
func (e *Environment) resolveMove(c *Creature, action Action) {
	next := e.nextPosition(action, c.Pos, c.Orient)
	if next == c.Pos {
		return
	}

	switch e.Grid.At(next).Kind {
	case BlankSpace, FightSpace:
		e.moveCreature(c, next)
	case FoodSpace:
		c.EatFood(e.Params.EnergyPerFood)
		e.moveCreature(c, next)
	case WallSpace, CreatureSpace:
		// Blocked; the creature stays put.
	}
}

func (e *Environment) moveCreature(c *Creature, next Position) {
	e.Grid.Set(c.Pos, Space{Kind: BlankSpace})
	e.Grid.Set(next, Space{Kind: CreatureSpace, CreatureID: c.ID})
	c.SetPosition(next)
}

// nextPosition maps a movement action to the neighboring cell relative
// to the creature's own facing, wrapping at the grid edges. Vision does
// not wrap; movement does.
func (e *Environment) nextPosition(action Action, pos Position, orient Orientation) Position {
	dir, ok := moveDirection(action, orient)
	if !ok {
		return pos
	}
	dx, dy := dir.Delta()
	return Position{
		X: (pos.X + dx + e.Params.Width) % e.Params.Width,
		Y: (pos.Y + dy + e.Params.Height) % e.Params.Height,
	}
}

// moveDirection converts a relative movement into the absolute
// orientation the creature steps toward.
func moveDirection(action Action, orient Orientation) (Orientation, bool) {
	switch action {
	case MoveForwards:
		return orient, true
	case MoveRight:
		return orient.RotateCW(), true
	case MoveBackwards:
		return orient.RotateCW().RotateCW(), true
	case MoveLeft:
		return orient.RotateCCW(), true
	}
	return orient, false
}

// spawnOffspring queues 1..MaxOffspring mutated clones of the parent.
// Ids continue from the running creature total.
func (e *Environment) spawnOffspring(parent *Creature, pending []*Creature) []*Creature {
	count := e.rng.Intn(e.Params.MaxOffspring) + 1
	for i := 0; i < count; i++ {
		child := NewOffspring(e.NumTotalCreatures, parent, e.Params.MutationProb, e.Params.ViolenceColor, e.rng)
		e.NumTotalCreatures++
		pending = append(pending, child)
	}
	return pending
}

// removeDead clears every dead creature off the board and out of the
// list. Predation leaves a decaying fight marker; natural death leaves
// a blank cell.
func (e *Environment) removeDead() {
	alive := e.Creatures[:0]
	for _, c := range e.Creatures {
		if !c.Dead() {
			alive = append(alive, c)
			continue
		}
		if c.WasKilled() {
			e.Grid.Set(c.Pos, Space{Kind: FightSpace, TTL: FightPersistenceTicks})
			e.NumKills++
		} else {
			e.Grid.Set(c.Pos, Space{Kind: BlankSpace})
			e.NumNaturalDeaths++
		}
		e.NumCreatures--
	}
	e.Creatures = alive
}

// placeOffspring finds each queued child a blank cell near its parent's
// last position. Children with no room are dropped silently; a full
// neighborhood is an expected condition, not an error.
func (e *Environment) placeOffspring(pending []*Creature) {
	for _, child := range pending {
		pos, err := e.blankCellNear(child.Pos)
		if err != nil {
			continue
		}
		child.SetPosition(pos)
		e.Grid.Set(pos, Space{Kind: CreatureSpace, CreatureID: child.ID})
		e.Creatures = append(e.Creatures, child)
		e.NumCreatures++
	}
}

// addNewFood tops up the board according to AvgNewFoodPerTick: below 1
// it is a per-tick probability of a single piece, at or above 1 a count
// is sampled from [0, 2*avg] centered on the average.
func (e *Environment) addNewFood() {
	avg := e.Params.AvgNewFoodPerTick
	if avg < 1 {
		if e.rng.Float64() < avg {
			e.dropFood()
		}
		return
	}
	count := int(math.Round(e.rng.Float64() * avg * 2))
	for i := 0; i < count; i++ {
		e.dropFood()
	}
}

func (e *Environment) dropFood() {
	pos, err := e.randBlankCell()
	if err != nil {
		return
	}
	e.Grid.Set(pos, Space{Kind: FoodSpace})
}
