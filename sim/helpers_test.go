package sim

import (
	"math/rand"
	"testing"
)

// emptyEnv builds a board with no random contents so tests control
// every cell.
func emptyEnv(t *testing.T, width, height int) *Environment {
	t.Helper()
	p := DefaultParams()
	p.Width = width
	p.Height = height
	p.StartCreatures = 0
	p.StartFood = 0
	p.StartWalls = 0
	p.AvgNewFoodPerTick = 0
	env, err := NewRandom(p, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}
	return env
}

// forcedBrain returns a brain whose network always picks the given
// action: everything is zeroed except a positive bias on that output
// slot.
func forcedBrain(t *testing.T, action Action) *Brain {
	t.Helper()
	b := NewBrain(rand.New(rand.NewSource(1)))
	n := b.Net
	for l := 0; l < n.NumLayers()-1; l++ {
		for row := 0; row < n.LayerSize(l + 1); row++ {
			for col := 0; col < n.LayerSize(l); col++ {
				n.SetWeight(l, row, col, 0)
			}
			n.SetBias(l, row, 0)
		}
	}
	slot := -1
	for i, a := range b.Actions {
		if a == action {
			slot = i
			break
		}
	}
	if slot < 0 {
		t.Fatalf("action %v not in slot layout", action)
	}
	n.SetBias(n.NumLayers()-2, slot, 1)
	return b
}

// putCreature adds a creature with a forced-action brain at the given
// cell.
func putCreature(t *testing.T, env *Environment, id int, pos Position, orient Orientation, energy int, action Action) *Creature {
	t.Helper()
	c := NewCreature(id, env.Params.creatureParams(), env.rng)
	c.Brain = forcedBrain(t, action)
	c.SetPosition(pos)
	c.SetOrientation(orient)
	c.Energy = energy
	env.AddCreature(c)
	return c
}
