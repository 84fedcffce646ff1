package sim

import (
	"errors"
	"math/rand"
	"testing"
)

func TestMoveIntoBlank(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	c := putCreature(t, env, 0, Position{X: 5, Y: 5}, Up, 20, MoveForwards)

	env.AdvanceStep()

	want := Position{X: 5, Y: 4}
	if c.Pos != want {
		t.Errorf("Pos = %v, want %v", c.Pos, want)
	}
	if env.Grid.At(want).Kind != CreatureSpace || env.Grid.At(want).CreatureID != 0 {
		t.Errorf("destination cell = %+v", env.Grid.At(want))
	}
	if env.Grid.At(Position{X: 5, Y: 5}).Kind != BlankSpace {
		t.Error("vacated cell is not blank")
	}
	if c.Energy != 19 {
		t.Errorf("Energy = %d, want 19", c.Energy)
	}
}

func TestMoveDirectionsAreOrientationRelative(t *testing.T) {
	cases := []struct {
		orient Orientation
		action Action
		want   Position
	}{
		{Up, MoveForwards, Position{X: 5, Y: 4}},
		{Up, MoveBackwards, Position{X: 5, Y: 6}},
		{Up, MoveLeft, Position{X: 4, Y: 5}},
		{Up, MoveRight, Position{X: 6, Y: 5}},
		{Down, MoveForwards, Position{X: 5, Y: 6}},
		{Down, MoveRight, Position{X: 4, Y: 5}},
		{Left, MoveForwards, Position{X: 4, Y: 5}},
		{Right, MoveLeft, Position{X: 5, Y: 4}},
	}
	for _, tc := range cases {
		env := emptyEnv(t, 10, 10)
		c := putCreature(t, env, 0, Position{X: 5, Y: 5}, tc.orient, 20, tc.action)
		env.AdvanceStep()
		if c.Pos != tc.want {
			t.Errorf("facing %v, %v: Pos = %v, want %v", tc.orient, tc.action, c.Pos, tc.want)
		}
	}
}

func TestMovementWrapsAtEdges(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	c := putCreature(t, env, 0, Position{X: 5, Y: 0}, Up, 20, MoveForwards)

	env.AdvanceStep()

	want := Position{X: 5, Y: 9}
	if c.Pos != want {
		t.Errorf("Pos = %v, want wrap to %v", c.Pos, want)
	}
}

func TestWallBlocksMoveButCostsEnergy(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	if err := env.AddWallSpace(Position{X: 5, Y: 4}); err != nil {
		t.Fatal(err)
	}
	c := putCreature(t, env, 0, Position{X: 5, Y: 5}, Up, 20, MoveForwards)

	env.AdvanceStep()

	if c.Pos != (Position{X: 5, Y: 5}) {
		t.Errorf("Pos = %v, want unchanged", c.Pos)
	}
	if c.Energy != 19 {
		t.Errorf("Energy = %d, want 19 (cost is not refunded)", c.Energy)
	}
	if env.Grid.At(Position{X: 5, Y: 4}).Kind != WallSpace {
		t.Error("wall cell changed")
	}
}

func TestCreatureBlocksMove(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	putCreature(t, env, 0, Position{X: 5, Y: 4}, Down, 20, Stay)
	mover := putCreature(t, env, 1, Position{X: 5, Y: 5}, Up, 20, MoveForwards)

	env.AdvanceStep()

	if mover.Pos != (Position{X: 5, Y: 5}) {
		t.Errorf("Pos = %v, want blocked in place", mover.Pos)
	}
}

func TestMoveOntoFoodEats(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	if err := env.AddFoodSpace(Position{X: 5, Y: 4}); err != nil {
		t.Fatal(err)
	}
	c := putCreature(t, env, 0, Position{X: 5, Y: 5}, Up, 20, MoveForwards)

	env.AdvanceStep()

	if c.Pos != (Position{X: 5, Y: 4}) {
		t.Errorf("Pos = %v, want the food cell", c.Pos)
	}
	// -1 move cost, +40 food.
	if c.Energy != 20-1+DefaultEnergyPerFood {
		t.Errorf("Energy = %d, want %d", c.Energy, 20-1+DefaultEnergyPerFood)
	}
	// NumFood refreshes at the start of the next tick; count cells.
	var food int
	for _, cell := range env.Grid.Cells {
		if cell.Kind == FoodSpace {
			food++
		}
	}
	if food != 0 {
		t.Errorf("food cells = %d, want 0", food)
	}
	env.AdvanceStep()
	if env.NumFood != 0 {
		t.Errorf("NumFood after rescan = %d, want 0", env.NumFood)
	}
}

func TestKillAdjacentVictim(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	victim := putCreature(t, env, 0, Position{X: 5, Y: 4}, Down, 20, Stay)
	attacker := putCreature(t, env, 1, Position{X: 5, Y: 5}, Up, 20, Kill)
	attacker.SetVision(VisionReading{InView: true, Dist: 1, Color: victim.Color, Kind: CreatureSpace, TargetID: 0})

	env.AdvanceStep()

	if len(env.Creatures) != 1 || env.Creatures[0] != attacker {
		t.Fatalf("victim not removed: %d creatures", len(env.Creatures))
	}
	if got := env.Grid.At(Position{X: 5, Y: 4}); got.Kind != FightSpace || got.TTL != FightPersistenceTicks {
		t.Errorf("victim cell = %+v, want fight space with full TTL", got)
	}
	if env.NumKills != 1 || env.NumNaturalDeaths != 0 {
		t.Errorf("kills=%d natural=%d", env.NumKills, env.NumNaturalDeaths)
	}
	// -1 kill cost, +30 from the kill.
	if attacker.Energy != 20-1+DefaultEnergyPerKill {
		t.Errorf("attacker energy = %d, want %d", attacker.Energy, 20-1+DefaultEnergyPerKill)
	}
}

func TestKillAtDistanceTwoMisses(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	victim := putCreature(t, env, 0, Position{X: 5, Y: 3}, Down, 20, Stay)
	attacker := putCreature(t, env, 1, Position{X: 5, Y: 5}, Up, 20, Kill)
	attacker.SetVision(VisionReading{InView: true, Dist: 2, Color: victim.Color, Kind: CreatureSpace, TargetID: 0})

	env.AdvanceStep()

	if len(env.Creatures) != 2 {
		t.Fatalf("distant kill landed: %d creatures", len(env.Creatures))
	}
	if attacker.Energy != 19 {
		t.Errorf("attacker energy = %d, want 19 (cost with no reward)", attacker.Energy)
	}
}

func TestKillWithNothingInViewIsNoOp(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	attacker := putCreature(t, env, 0, Position{X: 5, Y: 5}, Up, 20, Kill)

	env.AdvanceStep()

	if attacker.Energy != 19 {
		t.Errorf("attacker energy = %d, want 19", attacker.Energy)
	}
	if env.NumKills != 0 {
		t.Errorf("NumKills = %d, want 0", env.NumKills)
	}
}

func TestKillStaleTargetIDIsNoOp(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	attacker := putCreature(t, env, 0, Position{X: 5, Y: 5}, Up, 20, Kill)
	attacker.SetVision(VisionReading{InView: true, Dist: 1, Kind: CreatureSpace, TargetID: 99})

	env.AdvanceStep()

	if env.NumKills != 0 {
		t.Errorf("NumKills = %d, want 0", env.NumKills)
	}
	if attacker.Energy != 19 {
		t.Errorf("attacker energy = %d, want 19", attacker.Energy)
	}
}

func TestFightSpaceDecaysToBlank(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	pos := Position{X: 3, Y: 3}
	env.Grid.Set(pos, Space{Kind: FightSpace, TTL: 2})

	env.AdvanceStep() // 2 -> 1
	if got := env.Grid.At(pos); got.Kind != FightSpace || got.TTL != 1 {
		t.Fatalf("after 1 tick: %+v", got)
	}
	env.AdvanceStep() // 1 -> 0
	env.AdvanceStep() // 0 -> blank
	if got := env.Grid.At(pos); got.Kind != BlankSpace {
		t.Errorf("after 3 ticks: %+v, want blank", got)
	}
}

func TestFightSpaceCountsAsBlankAndIsWalkable(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	env.Grid.Set(Position{X: 5, Y: 4}, Space{Kind: FightSpace, TTL: 20})
	c := putCreature(t, env, 0, Position{X: 5, Y: 5}, Up, 20, MoveForwards)

	env.AdvanceStep()

	if c.Pos != (Position{X: 5, Y: 4}) {
		t.Errorf("Pos = %v, want the fight cell", c.Pos)
	}
}

func TestStarvationRemovesCreature(t *testing.T) {
	env := emptyEnv(t, 10, 10)
	pos := Position{X: 5, Y: 5}
	putCreature(t, env, 0, pos, Up, 1, MoveForwards)

	env.AdvanceStep()

	if len(env.Creatures) != 0 {
		t.Fatalf("starved creature still listed")
	}
	if env.Grid.At(pos).Kind != BlankSpace {
		t.Errorf("cell = %+v, want blank (natural death leaves no fight marker)", env.Grid.At(pos))
	}
	if env.NumNaturalDeaths != 1 || env.NumKills != 0 {
		t.Errorf("natural=%d kills=%d", env.NumNaturalDeaths, env.NumKills)
	}
}

func TestReproductionPlacesOffspringNearby(t *testing.T) {
	env := emptyEnv(t, 20, 20)
	parent := putCreature(t, env, 0, Position{X: 10, Y: 10}, Up, 100, Stay)

	env.AdvanceStep()

	if len(env.Creatures) < 2 {
		t.Fatal("no offspring placed")
	}
	if parent.Energy != 100-DefaultReproduceCost {
		t.Errorf("parent energy = %d, want %d", parent.Energy, 100-DefaultReproduceCost)
	}
	for _, child := range env.Creatures[1:] {
		if child.ID == parent.ID {
			continue
		}
		if abs(child.Pos.X-10) > OffspringSpawnRadius || abs(child.Pos.Y-10) > OffspringSpawnRadius {
			t.Errorf("child %d placed at %v, outside spawn radius", child.ID, child.Pos)
		}
		if got := env.Grid.At(child.Pos); got.Kind != CreatureSpace || got.CreatureID != child.ID {
			t.Errorf("child %d cell = %+v", child.ID, got)
		}
		if child.Energy != env.Params.StartEnergy {
			t.Errorf("child %d energy = %d, want %d", child.ID, child.Energy, env.Params.StartEnergy)
		}
	}
	if env.NumTotalCreatures != len(env.Creatures) {
		t.Errorf("NumTotalCreatures = %d, want %d", env.NumTotalCreatures, len(env.Creatures))
	}
}

func TestOffspringDroppedWhenNeighborhoodFull(t *testing.T) {
	// 1x1 board: the parent occupies the only cell, so no child can land.
	env := emptyEnv(t, 1, 1)
	putCreature(t, env, 0, Position{X: 0, Y: 0}, Up, 100, Stay)

	env.AdvanceStep()

	if len(env.Creatures) != 1 {
		t.Errorf("creatures = %d, want 1 (offspring silently dropped)", len(env.Creatures))
	}
}

func TestOffspringIDsContinueFromTotal(t *testing.T) {
	env := emptyEnv(t, 20, 20)
	putCreature(t, env, 0, Position{X: 10, Y: 10}, Up, 100, Stay)

	env.AdvanceStep()

	seen := map[int]bool{}
	for _, c := range env.Creatures {
		if seen[c.ID] {
			t.Fatalf("duplicate id %d", c.ID)
		}
		seen[c.ID] = true
		if c.ID >= env.NumTotalCreatures {
			t.Errorf("id %d not below running total %d", c.ID, env.NumTotalCreatures)
		}
	}
}

func TestAddNewFoodRespectsAverage(t *testing.T) {
	env := emptyEnv(t, 30, 30)
	env.Params.AvgNewFoodPerTick = 2.0

	for i := 0; i < 50; i++ {
		env.AdvanceStep()
	}

	// refreshCounters runs at the start of the tick, so count directly.
	var food int
	for _, cell := range env.Grid.Cells {
		if cell.Kind == FoodSpace {
			food++
		}
	}
	// E[food] = 50 ticks * 2 per tick = 100; demand a loose band.
	if food < 50 || food > 150 {
		t.Errorf("food after 50 ticks = %d, want around 100", food)
	}
}

func TestAddNewFoodZeroAverage(t *testing.T) {
	env := emptyEnv(t, 10, 10) // AvgNewFoodPerTick is 0 in emptyEnv
	for i := 0; i < 20; i++ {
		env.AdvanceStep()
	}
	for _, cell := range env.Grid.Cells {
		if cell.Kind == FoodSpace {
			t.Fatal("food appeared with zero average")
		}
	}
}

func TestConfiguredActionCostsAreDebited(t *testing.T) {
	cases := []struct {
		name   string
		action Action
		cost   int
	}{
		{"move", MoveForwards, 4},
		{"rotate", RotateCW, 3},
		{"kill", Kill, 7},
	}
	for _, tc := range cases {
		p := DefaultParams()
		p.Width, p.Height = 10, 10
		p.StartCreatures, p.StartFood, p.StartWalls = 0, 0, 0
		p.AvgNewFoodPerTick = 0
		p.MoveCost, p.RotateCost, p.KillCost = 4, 3, 7
		env, err := NewRandom(p, rand.New(rand.NewSource(1)))
		if err != nil {
			t.Fatal(err)
		}

		c := putCreature(t, env, 0, Position{X: 5, Y: 5}, Up, 30, tc.action)
		env.AdvanceStep()

		if c.Energy != 30-tc.cost {
			t.Errorf("%s: energy = %d, want %d", tc.name, c.Energy, 30-tc.cost)
		}
	}
}

func TestNegativeActionCostRejected(t *testing.T) {
	p := DefaultParams()
	p.RotateCost = -1
	var ce *ConfigError
	if err := p.Validate(); !errors.As(err, &ce) {
		t.Errorf("negative rotate cost: err = %v, want *ConfigError", err)
	}
}

func TestTimeStepAdvances(t *testing.T) {
	env := emptyEnv(t, 5, 5)
	for i := 0; i < 7; i++ {
		env.AdvanceStep()
	}
	if env.TimeStep != 7 {
		t.Errorf("TimeStep = %d, want 7", env.TimeStep)
	}
}
