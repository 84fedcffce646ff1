package sim

import (
	"fmt"
	"math/rand"
)

// Environment-level defaults. Energy per kill is deliberately lower
// than per food piece to keep scavenging viable.
const (
	DefaultEnergyPerFood     = 40
	DefaultEnergyPerKill     = 30
	DefaultMutationProb      = 0.02
	DefaultAvgNewFoodPerTick = 1.0
	DefaultMaxOffspring      = 2
	OffspringSpawnRadius     = 3
	FightPersistenceTicks    = 20
)

// Placement attempt budgets. Exhausting one is an expected, recoverable
// condition on a crowded board.
const (
	randBlankAttempts = 10000
	nearBlankAttempts = OffspringSpawnRadius * OffspringSpawnRadius
)

// EnvironmentParams are the construction inputs for an environment.
type EnvironmentParams struct {
	Width             int     `json:"width" yaml:"width"`
	Height            int     `json:"height" yaml:"height"`
	StartCreatures    int     `json:"start_creatures" yaml:"start_creatures"`
	StartFood         int     `json:"start_food" yaml:"start_food"`
	StartWalls        int     `json:"start_walls" yaml:"start_walls"`
	EnergyPerFood     int     `json:"energy_per_food" yaml:"energy_per_food"`
	EnergyPerKill     int     `json:"energy_per_kill" yaml:"energy_per_kill"`
	MaxOffspring      int     `json:"max_offspring" yaml:"max_offspring"`
	MutationProb      float64 `json:"mutation_prob" yaml:"mutation_prob"`
	AvgNewFoodPerTick float64 `json:"avg_new_food_per_tick" yaml:"avg_new_food_per_tick"`
	ReproduceCost     int     `json:"reproduce_cost" yaml:"reproduce_cost"`
	MoveCost          int     `json:"move_cost" yaml:"move_cost"`
	RotateCost        int     `json:"rotate_cost" yaml:"rotate_cost"`
	KillCost          int     `json:"kill_cost" yaml:"kill_cost"`
	StartEnergy       int     `json:"start_energy" yaml:"start_energy"`

	// ViolenceColor switches creature coloring from inherited-with-drift
	// to a red/blue shift tracking how violent the lineage is.
	ViolenceColor bool `json:"violence_color" yaml:"violence_color"`
}

// DefaultParams returns the standard environment configuration.
func DefaultParams() EnvironmentParams {
	return EnvironmentParams{
		Width:             50,
		Height:            50,
		StartCreatures:    100,
		StartFood:         150,
		StartWalls:        200,
		EnergyPerFood:     DefaultEnergyPerFood,
		EnergyPerKill:     DefaultEnergyPerKill,
		MaxOffspring:      DefaultMaxOffspring,
		MutationProb:      DefaultMutationProb,
		AvgNewFoodPerTick: DefaultAvgNewFoodPerTick,
		ReproduceCost:     DefaultReproduceCost,
		MoveCost:          DefaultMoveCost,
		RotateCost:        DefaultRotateCost,
		KillCost:          DefaultKillCost,
		StartEnergy:       DefaultStartEnergy,
	}
}

// Validate rejects parameter sets that cannot produce a consistent
// board. It runs before any environment state is built.
func (p EnvironmentParams) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return &ConfigError{Field: "width/height", Reason: "dimensions must be positive"}
	}
	area := p.Width * p.Height
	if p.StartCreatures < 0 || p.StartFood < 0 || p.StartWalls < 0 {
		return &ConfigError{Field: "start counts", Reason: "must not be negative"}
	}
	if p.StartCreatures+p.StartFood+p.StartWalls > area {
		return &ConfigError{
			Field:  "start counts",
			Reason: fmt.Sprintf("creatures+food+walls (%d) exceed cell count (%d)", p.StartCreatures+p.StartFood+p.StartWalls, area),
		}
	}
	if p.MutationProb < 0 || p.MutationProb > 1 {
		return &ConfigError{Field: "mutation_prob", Reason: "probability must be in [0,1]"}
	}
	if p.AvgNewFoodPerTick < 0 {
		return &ConfigError{Field: "avg_new_food_per_tick", Reason: "must not be negative"}
	}
	if p.MaxOffspring < 1 {
		return &ConfigError{Field: "max_offspring", Reason: "must be at least 1"}
	}
	if p.EnergyPerFood < 0 || p.EnergyPerKill < 0 || p.ReproduceCost < 0 {
		return &ConfigError{Field: "energy amounts", Reason: "must not be negative"}
	}
	if p.MoveCost < 0 || p.RotateCost < 0 || p.KillCost < 0 {
		return &ConfigError{Field: "action costs", Reason: "must not be negative"}
	}
	if p.StartEnergy < 1 || p.StartEnergy > MaxEnergy {
		return &ConfigError{Field: "start_energy", Reason: fmt.Sprintf("must be in [1,%d]", MaxEnergy)}
	}
	return nil
}

func (p EnvironmentParams) creatureParams() CreatureParams {
	return CreatureParams{
		ReproduceCost: p.ReproduceCost,
		MoveCost:      p.MoveCost,
		RotateCost:    p.RotateCost,
		KillCost:      p.KillCost,
		StartEnergy:   p.StartEnergy,
	}
}

// Environment owns the grid and the ordered creature list, and advances
// the whole world one tick at a time. It is exclusively owned by one
// caller; nothing here is safe for concurrent use, by design: the fixed
// step ordering plus the injected seeded RNG make two runs from the
// same initial state produce identical trajectories.
type Environment struct {
	Params    EnvironmentParams `json:"params"`
	Grid      *Grid             `json:"grid"`
	Creatures []*Creature       `json:"creatures"`
	TimeStep  int               `json:"time_step"`

	// Counters re-derived from a full grid scan each tick.
	NumFood      int `json:"num_food"`
	NumWalls     int `json:"num_walls"`
	NumBlank     int `json:"num_blank"`
	NumCreatures int `json:"num_creatures"`

	// Monotonic counters.
	NumTotalCreatures int `json:"num_total_creatures"`
	NumKills          int `json:"num_kills"`
	NumNaturalDeaths  int `json:"num_natural_deaths"`

	rng *rand.Rand
}

// NewRandom builds an environment with randomly scattered walls, food
// and starting creatures. All randomness is drawn from rng.
func NewRandom(params EnvironmentParams, rng *rand.Rand) (*Environment, error) {
	return newRandom(params, noPreset, rng)
}

// NewRandomWithPreset builds an environment whose walls come from one
// of the built-in fixed-size layouts; food and creature placement stay
// random.
func NewRandomWithPreset(params EnvironmentParams, preset int, rng *rand.Rand) (*Environment, error) {
	if preset < 0 || preset >= NumPresets {
		return nil, &ConfigError{Field: "preset", Reason: fmt.Sprintf("must be in [0,%d)", NumPresets)}
	}
	if params.Width != PresetSize || params.Height != PresetSize {
		return nil, &ConfigError{
			Field:  "preset",
			Reason: fmt.Sprintf("preset layouts are %dx%d, got %dx%d", PresetSize, PresetSize, params.Width, params.Height),
		}
	}
	return newRandom(params, preset, rng)
}

const noPreset = -1

func newRandom(params EnvironmentParams, preset int, rng *rand.Rand) (*Environment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e := &Environment{
		Params:    params,
		Grid:      NewGrid(params.Width, params.Height),
		Creatures: make([]*Creature, 0, params.StartCreatures),
		rng:       rng,
	}

	if preset == noPreset {
		for i := 0; i < params.StartWalls; i++ {
			pos, err := e.randBlankCell()
			if err != nil {
				break
			}
			e.Grid.Set(pos, Space{Kind: WallSpace})
		}
	} else {
		for _, pos := range presetWalls(preset) {
			e.Grid.Set(pos, Space{Kind: WallSpace})
		}
	}

	for i := 0; i < params.StartFood; i++ {
		pos, err := e.randBlankCell()
		if err != nil {
			break
		}
		e.Grid.Set(pos, Space{Kind: FoodSpace})
	}

	cp := params.creatureParams()
	for i := 0; i < params.StartCreatures; i++ {
		c := NewCreature(e.NumTotalCreatures, cp, rng)
		pos, err := e.randBlankCell()
		if err != nil {
			break
		}
		c.SetPosition(pos)
		c.SetOrientation(Orientation(rng.Intn(NumOrientations)))
		e.AddCreature(c)
	}

	e.refreshCounters()
	return e, nil
}

// RunSteps advances up to n ticks, stopping early with ErrExtinct if
// the population dies out.
func (e *Environment) RunSteps(n int) error {
	for i := 0; i < n; i++ {
		e.AdvanceStep()
		if e.NumCreatures == 0 {
			return fmt.Errorf("stopped after %d of %d steps: %w", i+1, n, ErrExtinct)
		}
	}
	return nil
}

// AddFoodSpace places food at the given cell. Creature cells are
// protected: only AddCreature may overwrite them.
func (e *Environment) AddFoodSpace(pos Position) error {
	return e.setNonCreature(pos, Space{Kind: FoodSpace})
}

// AddWallSpace places a wall at the given cell.
func (e *Environment) AddWallSpace(pos Position) error {
	return e.setNonCreature(pos, Space{Kind: WallSpace})
}

// AddBlankSpace clears the given cell of anything but a creature.
func (e *Environment) AddBlankSpace(pos Position) error {
	return e.setNonCreature(pos, Space{Kind: BlankSpace})
}

func (e *Environment) setNonCreature(pos Position, s Space) error {
	if !e.Grid.InBounds(pos) {
		return &ConfigError{Field: "position", Reason: fmt.Sprintf("(%d,%d) out of bounds", pos.X, pos.Y)}
	}
	if e.Grid.At(pos).Kind == CreatureSpace {
		return fmt.Errorf("cell (%d,%d): %w", pos.X, pos.Y, ErrOccupied)
	}
	e.Grid.Set(pos, s)
	return nil
}

// AddCreature claims the creature's cell (overwriting whatever is
// there), appends it to the list, and bumps the running total that
// seeds new ids.
func (e *Environment) AddCreature(c *Creature) {
	e.Grid.Set(c.Pos, Space{Kind: CreatureSpace, CreatureID: c.ID})
	e.Creatures = append(e.Creatures, c)
	e.NumTotalCreatures++
}

// IndexOfID returns the index of the creature with the given id in the
// ordered list, or ErrNotFound.
func (e *Environment) IndexOfID(id int) (int, error) {
	for i, c := range e.Creatures {
		if c.ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("creature %d: %w", id, ErrNotFound)
}

// CreatureByID resolves a creature id to the live creature.
func (e *Environment) CreatureByID(id int) (*Creature, error) {
	i, err := e.IndexOfID(id)
	if err != nil {
		return nil, err
	}
	return e.Creatures[i], nil
}

// randBlankCell samples uniformly random cells until it hits a blank
// one, giving up after the attempt budget.
func (e *Environment) randBlankCell() (Position, error) {
	for attempts := 0; attempts < randBlankAttempts; attempts++ {
		pos := Position{X: e.rng.Intn(e.Params.Width), Y: e.rng.Intn(e.Params.Height)}
		if e.Grid.At(pos).Kind == BlankSpace {
			return pos, nil
		}
	}
	return Position{}, ErrNoSpace
}

// blankCellNear samples blank cells within the offspring spawn radius
// of center, clamped to the board. The attempt budget is deliberately
// small; a crowded neighborhood means the offspring is not placed.
func (e *Environment) blankCellNear(center Position) (Position, error) {
	for attempts := 0; attempts <= nearBlankAttempts; attempts++ {
		dx := e.rng.Intn(2*OffspringSpawnRadius) - OffspringSpawnRadius
		dy := e.rng.Intn(2*OffspringSpawnRadius) - OffspringSpawnRadius
		pos := Position{X: clamp(center.X+dx, 0, e.Params.Width-1), Y: clamp(center.Y+dy, 0, e.Params.Height-1)}
		if e.Grid.At(pos).Kind == BlankSpace {
			return pos, nil
		}
	}
	return Position{}, ErrNoSpace
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
