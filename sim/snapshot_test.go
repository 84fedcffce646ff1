package sim

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func busyEnv(t *testing.T) *Environment {
	t.Helper()
	p := DefaultParams()
	p.Width, p.Height = 20, 20
	p.StartCreatures, p.StartFood, p.StartWalls = 10, 15, 20
	env, err := NewRandom(p, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}
	if err := env.RunSteps(10); err != nil && !errors.Is(err, ErrExtinct) {
		t.Fatal(err)
	}
	return env
}

func TestSnapshotRoundTrip(t *testing.T) {
	env := busyEnv(t)

	data, err := env.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	restored, err := FromJSON(data, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	data2, err := restored.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(data2) {
		t.Error("snapshot round trip is not byte-stable")
	}

	if restored.TimeStep != env.TimeStep {
		t.Errorf("TimeStep = %d, want %d", restored.TimeStep, env.TimeStep)
	}
	if len(restored.Creatures) != len(env.Creatures) {
		t.Errorf("creatures = %d, want %d", len(restored.Creatures), len(env.Creatures))
	}
}

func TestRestoredEnvironmentKeepsRunning(t *testing.T) {
	env := busyEnv(t)
	data, err := env.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	restored, err := FromJSON(data, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.RunSteps(5); err != nil && !errors.Is(err, ErrExtinct) {
		t.Fatalf("restored environment cannot advance: %v", err)
	}
}

func TestFromJSONRejectsCorruptData(t *testing.T) {
	var se *StateError
	if _, err := FromJSON([]byte("{not json"), rand.New(rand.NewSource(1))); !errors.As(err, &se) {
		t.Errorf("corrupt data: err = %v, want *StateError", err)
	}
}

func TestFromJSONRejectsVersionMismatch(t *testing.T) {
	env := busyEnv(t)
	data, err := env.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	bad := strings.Replace(string(data), `"version":1`, `"version":99`, 1)

	var se *StateError
	if _, err := FromJSON([]byte(bad), rand.New(rand.NewSource(1))); !errors.As(err, &se) {
		t.Errorf("version mismatch: err = %v, want *StateError", err)
	}
}

func TestFromJSONRejectsShapeMismatch(t *testing.T) {
	env := busyEnv(t)
	data, err := env.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	// Claim a different width than the grid actually has.
	bad := strings.Replace(string(data), `"width":20`, `"width":21`, 1)

	var se *StateError
	if _, err := FromJSON([]byte(bad), rand.New(rand.NewSource(1))); !errors.As(err, &se) {
		t.Errorf("shape mismatch: err = %v, want *StateError", err)
	}
}

func TestFromJSONRejectsOutOfBoundsCreature(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	putCreature(t, env, 0, Position{X: 5, Y: 5}, Up, 20, Stay)
	env.Creatures[0].Pos = Position{X: -1, Y: 5}

	data, err := env.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	var se *StateError
	if _, err := FromJSON(data, rand.New(rand.NewSource(1))); !errors.As(err, &se) {
		t.Errorf("out-of-bounds creature: err = %v, want *StateError", err)
	}
}

func TestFromJSONRejectsDesyncedCreature(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	putCreature(t, env, 0, Position{X: 5, Y: 5}, Up, 20, Stay)
	// Move the creature's own record without updating the grid.
	env.Creatures[0].Pos = Position{X: 2, Y: 2}

	data, err := env.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	var se *StateError
	if _, err := FromJSON(data, rand.New(rand.NewSource(1))); !errors.As(err, &se) {
		t.Errorf("desynced creature: err = %v, want *StateError", err)
	}
}

func TestFromJSONRejectsDuplicateIDs(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	putCreature(t, env, 0, Position{X: 5, Y: 5}, Up, 20, Stay)
	dup := putCreature(t, env, 1, Position{X: 2, Y: 2}, Up, 20, Stay)
	dup.ID = 0
	env.Grid.Set(dup.Pos, Space{Kind: CreatureSpace, CreatureID: 0})

	data, err := env.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	var se *StateError
	if _, err := FromJSON(data, rand.New(rand.NewSource(1))); !errors.As(err, &se) {
		t.Errorf("duplicate ids: err = %v, want *StateError", err)
	}
}

func TestLoadPartialWallsOnly(t *testing.T) {
	src := busyEnv(t)
	data, err := src.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	dst := emptyEnv(t, 20, 20)
	putCreature(t, dst, 0, Position{X: 1, Y: 1}, Up, 20, Stay)
	if err := dst.AddFoodSpace(Position{X: 2, Y: 2}); err != nil {
		t.Fatal(err)
	}

	if err := dst.LoadPartial(data, LoadOptions{Walls: true}); err != nil {
		t.Fatal(err)
	}

	// Walls land where the source had them, skipping creature cells.
	for i, cell := range src.Grid.Cells {
		if cell.Kind != WallSpace {
			continue
		}
		got := dst.Grid.Cells[i].Kind
		if got != WallSpace && got != CreatureSpace {
			t.Fatalf("cell %d = %v, want wall", i, got)
		}
	}
	// Everything else untouched.
	if len(dst.Creatures) != 1 {
		t.Errorf("creatures = %d, want 1", len(dst.Creatures))
	}
	if dst.Grid.At(Position{X: 2, Y: 2}).Kind != FoodSpace && src.Grid.At(Position{X: 2, Y: 2}).Kind != WallSpace {
		t.Error("existing food lost on a walls-only load")
	}
	if dst.NumWalls == 0 {
		t.Error("wall counter not refreshed")
	}
}

func TestLoadPartialCreaturesReplacesPopulation(t *testing.T) {
	src := busyEnv(t)
	data, err := src.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	dst := emptyEnv(t, 20, 20)
	putCreature(t, dst, 0, Position{X: 3, Y: 3}, Up, 20, Stay)

	if err := dst.LoadPartial(data, LoadOptions{Creatures: true}); err != nil {
		t.Fatal(err)
	}

	if len(dst.Creatures) != len(src.Creatures) {
		t.Fatalf("creatures = %d, want %d", len(dst.Creatures), len(src.Creatures))
	}
	for _, c := range dst.Creatures {
		if cell := dst.Grid.At(c.Pos); cell.Kind != CreatureSpace || cell.CreatureID != c.ID {
			t.Errorf("creature %d cell desynced: %+v", c.ID, cell)
		}
	}
	if dst.NumTotalCreatures < src.NumTotalCreatures {
		t.Errorf("NumTotalCreatures = %d, want at least %d (id collisions)", dst.NumTotalCreatures, src.NumTotalCreatures)
	}
}

func TestLoadPartialParamsDimensionChangeResetsGrid(t *testing.T) {
	src := busyEnv(t) // 20x20
	data, err := src.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	dst := emptyEnv(t, 10, 10)
	if err := dst.AddWallSpace(Position{X: 5, Y: 5}); err != nil {
		t.Fatal(err)
	}

	if err := dst.LoadPartial(data, LoadOptions{Parameters: true}); err != nil {
		t.Fatal(err)
	}

	if dst.Grid.Width != 20 || dst.Grid.Height != 20 {
		t.Fatalf("grid = %dx%d, want 20x20", dst.Grid.Width, dst.Grid.Height)
	}
	if dst.NumWalls != 0 || dst.NumBlank != 400 {
		t.Errorf("walls=%d blank=%d, want a fully blank reset grid", dst.NumWalls, dst.NumBlank)
	}
	if dst.Params.Width != 20 {
		t.Errorf("Params.Width = %d, want 20", dst.Params.Width)
	}
}

func TestLoadPartialDimensionMismatchWithoutParams(t *testing.T) {
	src := busyEnv(t) // 20x20
	data, err := src.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	dst := emptyEnv(t, 10, 10)
	var se *StateError
	if err := dst.LoadPartial(data, LoadOptions{Walls: true}); !errors.As(err, &se) {
		t.Errorf("wall import across sizes: err = %v, want *StateError", err)
	}
}

func TestLoadAllMatchesFromJSON(t *testing.T) {
	src := busyEnv(t)
	data, err := src.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	dst := emptyEnv(t, 20, 20)
	if err := dst.LoadPartial(data, LoadAll); err != nil {
		t.Fatal(err)
	}

	if dst.NumCreatures != src.NumCreatures || dst.NumWalls != src.NumWalls {
		t.Errorf("counters %d/%d, want %d/%d", dst.NumCreatures, dst.NumWalls, src.NumCreatures, src.NumWalls)
	}
}
