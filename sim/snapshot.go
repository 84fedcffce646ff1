package sim

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// SnapshotVersion is incremented when the serialized format changes.
const SnapshotVersion = 1

// snapshot is the serialized form of an Environment: parameters, grid,
// the ordered creature list with all fields, counters and the clock.
type snapshot struct {
	Version int `json:"version"`

	Params    EnvironmentParams `json:"params"`
	Grid      *Grid             `json:"grid"`
	Creatures []*Creature       `json:"creatures"`
	TimeStep  int               `json:"time_step"`

	NumFood           int `json:"num_food"`
	NumWalls          int `json:"num_walls"`
	NumBlank          int `json:"num_blank"`
	NumCreatures      int `json:"num_creatures"`
	NumTotalCreatures int `json:"num_total_creatures"`
	NumKills          int `json:"num_kills"`
	NumNaturalDeaths  int `json:"num_natural_deaths"`
}

// LoadOptions selects which parts of a snapshot to import into a live
// environment. Unselected parts of current state are left untouched.
type LoadOptions struct {
	Parameters bool
	Creatures  bool
	Walls      bool
	Food       bool
}

// LoadAll selects every subset.
var LoadAll = LoadOptions{Parameters: true, Creatures: true, Walls: true, Food: true}

// ToJSON serializes the whole environment.
func (e *Environment) ToJSON() ([]byte, error) {
	s := snapshot{
		Version:           SnapshotVersion,
		Params:            e.Params,
		Grid:              e.Grid,
		Creatures:         e.Creatures,
		TimeStep:          e.TimeStep,
		NumFood:           e.NumFood,
		NumWalls:          e.NumWalls,
		NumBlank:          e.NumBlank,
		NumCreatures:      e.NumCreatures,
		NumTotalCreatures: e.NumTotalCreatures,
		NumKills:          e.NumKills,
		NumNaturalDeaths:  e.NumNaturalDeaths,
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, &StateError{Reason: "marshal environment", Err: err}
	}
	return data, nil
}

// parseSnapshot decodes and sanity-checks a snapshot without touching
// any live state, so a failed load leaves the caller unmodified.
func parseSnapshot(data []byte) (*snapshot, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &StateError{Reason: "corrupt snapshot", Err: err}
	}
	if s.Version != SnapshotVersion {
		return nil, &StateError{Reason: fmt.Sprintf("snapshot version %d, want %d", s.Version, SnapshotVersion)}
	}
	if s.Grid == nil {
		return nil, &StateError{Reason: "snapshot has no grid"}
	}
	if s.Grid.Width != s.Params.Width || s.Grid.Height != s.Params.Height {
		return nil, &StateError{Reason: fmt.Sprintf("grid %dx%d does not match params %dx%d",
			s.Grid.Width, s.Grid.Height, s.Params.Width, s.Params.Height)}
	}
	if len(s.Grid.Cells) != s.Grid.Width*s.Grid.Height {
		return nil, &StateError{Reason: fmt.Sprintf("grid has %d cells, want %d",
			len(s.Grid.Cells), s.Grid.Width*s.Grid.Height)}
	}
	seen := make(map[int]bool, len(s.Creatures))
	for _, c := range s.Creatures {
		if c.Brain == nil || c.Brain.Net == nil {
			return nil, &StateError{Reason: fmt.Sprintf("creature %d has no brain", c.ID)}
		}
		if seen[c.ID] {
			return nil, &StateError{Reason: fmt.Sprintf("duplicate creature id %d", c.ID)}
		}
		seen[c.ID] = true
		if !s.Grid.InBounds(c.Pos) {
			return nil, &StateError{Reason: fmt.Sprintf("creature %d at (%d,%d) out of bounds", c.ID, c.Pos.X, c.Pos.Y)}
		}
		if cell := s.Grid.At(c.Pos); cell.Kind != CreatureSpace || cell.CreatureID != c.ID {
			return nil, &StateError{Reason: fmt.Sprintf("creature %d desynced from its grid cell (%d,%d)", c.ID, c.Pos.X, c.Pos.Y)}
		}
	}
	return &s, nil
}

// FromJSON reconstructs an environment from a snapshot, attaching the
// given RNG for subsequent ticks.
func FromJSON(data []byte, rng *rand.Rand) (*Environment, error) {
	s, err := parseSnapshot(data)
	if err != nil {
		return nil, err
	}
	return &Environment{
		Params:            s.Params,
		Grid:              s.Grid,
		Creatures:         s.Creatures,
		TimeStep:          s.TimeStep,
		NumFood:           s.NumFood,
		NumWalls:          s.NumWalls,
		NumBlank:          s.NumBlank,
		NumCreatures:      s.NumCreatures,
		NumTotalCreatures: s.NumTotalCreatures,
		NumKills:          s.NumKills,
		NumNaturalDeaths:  s.NumNaturalDeaths,
		rng:               rng,
	}, nil
}

// LoadPartial imports the selected subsets of a snapshot into the live
// environment, re-deriving grid occupancy and counters for what was
// imported. A parameter load that changes dimensions resets the whole
// grid to blank before re-population.
func (e *Environment) LoadPartial(data []byte, opts LoadOptions) error {
	s, err := parseSnapshot(data)
	if err != nil {
		return err
	}

	if opts.Parameters {
		if s.Params.Width != e.Params.Width || s.Params.Height != e.Params.Height {
			e.Grid = NewGrid(s.Params.Width, s.Params.Height)
		}
		e.Params = s.Params
	}

	if opts.Creatures {
		e.clearKind(CreatureSpace)
		e.Creatures = e.Creatures[:0]
		for _, c := range s.Creatures {
			if !e.Grid.InBounds(c.Pos) {
				continue
			}
			e.Creatures = append(e.Creatures, c)
			e.Grid.Set(c.Pos, Space{Kind: CreatureSpace, CreatureID: c.ID})
		}
		if s.NumTotalCreatures > e.NumTotalCreatures {
			e.NumTotalCreatures = s.NumTotalCreatures
		}
	}

	if opts.Walls {
		if err := e.copyKindFrom(s.Grid, WallSpace); err != nil {
			return err
		}
	}

	if opts.Food {
		if err := e.copyKindFrom(s.Grid, FoodSpace); err != nil {
			return err
		}
	}

	e.refreshCounters()
	return nil
}

// clearKind blanks every cell of the given kind.
func (e *Environment) clearKind(kind SpaceKind) {
	for i := range e.Grid.Cells {
		if e.Grid.Cells[i].Kind == kind {
			e.Grid.Cells[i] = Space{Kind: BlankSpace}
		}
	}
}

// copyKindFrom clears the kind locally and re-imports every cell of
// that kind from src, which must match the live grid's dimensions.
func (e *Environment) copyKindFrom(src *Grid, kind SpaceKind) error {
	if src.Width != e.Grid.Width || src.Height != e.Grid.Height {
		return &StateError{Reason: fmt.Sprintf("cannot import %s cells from %dx%d snapshot into %dx%d grid",
			kind, src.Width, src.Height, e.Grid.Width, e.Grid.Height)}
	}
	e.clearKind(kind)
	for i, cell := range src.Cells {
		if cell.Kind == kind && e.Grid.Cells[i].Kind != CreatureSpace {
			e.Grid.Cells[i] = Space{Kind: kind}
		}
	}
	return nil
}
