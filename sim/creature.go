package sim

import (
	"math/rand"
)

// Hard limits and defaults for creature state. The reproduce threshold
// is fixed one unit above the default starting energy: a creature only
// breeds after it has found food.
const (
	MaxEnergy            = 200
	MaxAge               = 200
	DefaultStartEnergy   = 40
	MinReproduceEnergy   = DefaultStartEnergy + 1
	DefaultReproduceCost = DefaultStartEnergy
	DefaultMoveCost      = 1
	DefaultRotateCost    = 1
	DefaultKillCost      = 1
)

// Color inheritance: each channel drifts by at most this much per
// reproduction, and offspring are re-brightened when the channel sum
// falls under the floor so lineages never mutate to invisible black.
const (
	maxColorDeviation = 100
	minColorSum       = 255
)

// CreatureParams are the per-creature energy economics.
type CreatureParams struct {
	ReproduceCost int `json:"reproduce_cost" yaml:"reproduce_cost"`
	MoveCost      int `json:"move_cost" yaml:"move_cost"`
	RotateCost    int `json:"rotate_cost" yaml:"rotate_cost"`
	KillCost      int `json:"kill_cost" yaml:"kill_cost"`
	StartEnergy   int `json:"start_energy" yaml:"start_energy"`
}

// DefaultCreatureParams returns the standard cost table.
func DefaultCreatureParams() CreatureParams {
	return CreatureParams{
		ReproduceCost: DefaultReproduceCost,
		MoveCost:      DefaultMoveCost,
		RotateCost:    DefaultRotateCost,
		KillCost:      DefaultKillCost,
		StartEnergy:   DefaultStartEnergy,
	}
}

// VisionReading is what a creature saw down its facing at the end of
// the previous tick. Dist, Color, Kind and TargetID are meaningless
// when InView is false.
type VisionReading struct {
	InView   bool      `json:"in_view"`
	Dist     int       `json:"dist"`
	Color    Color     `json:"color"`
	Kind     SpaceKind `json:"kind"`
	TargetID int       `json:"target_id,omitempty"`
}

// Creature is one agent: a brain plus mutable per-tick state.
type Creature struct {
	Params     CreatureParams `json:"params"`
	Brain      *Brain         `json:"brain"`
	ID         int            `json:"id"`
	Alive      bool           `json:"alive"`
	Killed     bool           `json:"killed"`
	Pos        Position       `json:"position"`
	Orient     Orientation    `json:"orientation"`
	Energy     int            `json:"energy"`
	Vision     VisionReading  `json:"vision"`
	Age        int            `json:"age"`
	Color      Color          `json:"color"`
	LastAction Action         `json:"last_action"`
}

// NewCreature returns a creature with a fresh random brain at (0,0).
func NewCreature(id int, params CreatureParams, rng *rand.Rand) *Creature {
	return &Creature{
		Params:     params,
		Brain:      NewBrain(rng),
		ID:         id,
		Alive:      true,
		Orient:     Up,
		Energy:     DefaultStartEnergy,
		Color:      DefaultCreatureColor,
		LastAction: Stay,
	}
}

// NewOffspring clones a parent with an independently mutated brain. The
// child starts at the parent's position and orientation; the
// environment relocates it to a nearby blank cell on placement. In
// violence color mode the child drifts toward docile coloring instead
// of inheriting a random color mutation.
func NewOffspring(id int, parent *Creature, mutationProb float64, violenceColor bool, rng *rand.Rand) *Creature {
	c := &Creature{
		Params:     parent.Params,
		Brain:      NewBrainCopy(parent.Brain, mutationProb, rng),
		ID:         id,
		Alive:      true,
		Pos:        parent.Pos,
		Orient:     parent.Orient,
		Energy:     parent.Params.StartEnergy,
		Color:      parent.Color,
		LastAction: Stay,
	}
	if violenceColor {
		c.unmarkKiller(violenceColor)
	} else {
		c.mutateColor(mutationProb, rng)
	}
	return c
}

// Dead reports whether the creature is out of energy or out of years.
func (c *Creature) Dead() bool {
	return c.Energy <= 0 || c.Age >= MaxAge
}

// SetPosition moves the creature's own record; the environment keeps
// the grid cell in sync.
func (c *Creature) SetPosition(p Position) { c.Pos = p }

// SetOrientation sets the facing directly.
func (c *Creature) SetOrientation(o Orientation) { c.Orient = o }

// SetVision installs the reading computed by the environment raycast.
func (c *Creature) SetVision(v VisionReading) { c.Vision = v }

// EatFood adds energy, saturating at MaxEnergy.
func (c *Creature) EatFood(amount int) {
	c.Energy += amount
	if c.Energy > MaxEnergy {
		c.Energy = MaxEnergy
	}
}

// Kill marks the creature as hunted down by another: energy zeroed,
// dead, and flagged killed-by-other so the environment leaves a fight
// space behind.
func (c *Creature) Kill() {
	c.Energy = 0
	c.Alive = false
	c.Killed = true
}

// WasKilled reports whether death came from predation.
func (c *Creature) WasKilled() bool { return c.Killed }

// markKiller shifts the creature's color toward red in violence color
// mode, signalling danger to onlookers.
func (c *Creature) markKiller(violenceColor bool) {
	if !violenceColor {
		return
	}
	c.Color.R = satAddByte(c.Color.R, 10)
	c.Color.B = satSubByte(c.Color.B, 10)
}

func (c *Creature) unmarkKiller(violenceColor bool) {
	if !violenceColor {
		return
	}
	c.Color.R = satSubByte(c.Color.R, 10)
	c.Color.B = satAddByte(c.Color.B, 10)
}

// mutateColor drifts each channel independently with probability prob,
// then re-brightens the color if the channel sum fell under the floor.
func (c *Creature) mutateColor(prob float64, rng *rand.Rand) {
	channels := []*uint8{&c.Color.R, &c.Color.G, &c.Color.B}
	for _, ch := range channels {
		if rng.Float64() <= prob {
			dev := rng.Intn(2*maxColorDeviation+1) - maxColorDeviation
			if dev < 0 {
				*ch = satSubByte(*ch, uint8(-dev))
			} else {
				*ch = satAddByte(*ch, uint8(dev))
			}
		}
	}

	sum := int(c.Color.R) + int(c.Color.G) + int(c.Color.B)
	if sum < minColorSum {
		lift := uint8((minColorSum - sum) / 3)
		c.Color.R = satAddByte(c.Color.R, lift)
		c.Color.G = satAddByte(c.Color.G, lift)
		c.Color.B = satAddByte(c.Color.B, lift)
	}
}

// SenseSurroundings writes the creature's current state into its brain
// input slots. Call before PerformNextAction.
func (c *Creature) SenseSurroundings() {
	visDist := VisionSentinel
	visRed := VisionSentinel
	visGreen := VisionSentinel
	visBlue := VisionSentinel
	if c.Vision.InView {
		visDist = float64(c.Vision.Dist)
		visRed = float64(c.Vision.Color.R)
		visGreen = float64(c.Vision.Color.G)
		visBlue = float64(c.Vision.Color.B)
	}

	for slot, sensor := range c.Brain.Sensors {
		switch sensor {
		case SensorAge:
			c.Brain.SetInput(slot, float64(c.Age))
		case SensorEnergy:
			c.Brain.SetInput(slot, float64(c.Energy))
		case SensorVisionDist:
			c.Brain.SetInput(slot, visDist)
		case SensorVisionRed:
			c.Brain.SetInput(slot, visRed)
		case SensorVisionGreen:
			c.Brain.SetInput(slot, visGreen)
		case SensorVisionBlue:
			c.Brain.SetInput(slot, visBlue)
		case SensorOrientation:
			c.Brain.SetInput(slot, c.Orient.SensorCode())
		case SensorLastAction:
			c.Brain.SetInput(slot, c.LastAction.SensorCode())
		}
	}
}

// PerformNextAction advances the creature's internal state machine and
// returns the action for the environment to resolve against the grid.
//
// Order matters: death check, aging, the unconditional reproduce
// threshold (which bypasses the brain entirely), then brain evaluation
// with immediate rotation and energy debit. A creature that spends its
// last energy here dies in place and the action degrades to Stay.
func (c *Creature) PerformNextAction() Action {
	if c.Dead() {
		c.LastAction = Stay
		return Stay
	}

	if c.Age < MaxAge {
		c.Age++
	} else {
		c.Alive = false
		return Stay
	}

	if c.Energy > MinReproduceEnergy {
		c.Energy = satSubInt(c.Energy, c.Params.ReproduceCost)
		c.LastAction = Reproduce
		return Reproduce
	}

	action := c.Brain.NextAction()
	c.LastAction = action

	// Rotation is the one action with no grid dependency; apply it here.
	c.applyRotation(action)

	switch {
	case action == Reproduce:
		c.Energy = satSubInt(c.Energy, c.Params.ReproduceCost)
	case action.IsMove():
		c.Energy = satSubInt(c.Energy, c.Params.MoveCost)
	case action == RotateCW || action == RotateCCW:
		c.Energy = satSubInt(c.Energy, c.Params.RotateCost)
	case action == Kill:
		c.Energy = satSubInt(c.Energy, c.Params.KillCost)
	}

	if c.Energy == 0 {
		c.Alive = false
		action = Stay
	}

	return action
}

// applyRotation cycles the orientation for rotate actions and leaves it
// untouched for everything else.
func (c *Creature) applyRotation(action Action) {
	switch action {
	case RotateCW:
		c.Orient = c.Orient.RotateCW()
	case RotateCCW:
		c.Orient = c.Orient.RotateCCW()
	}
}

func satSubInt(v, d int) int {
	if v < d {
		return 0
	}
	return v - d
}
