package sim

// MaxViewDistance is how many cells a creature can see down its facing.
const MaxViewDistance = 5

// updateVision recomputes what every creature is looking at, so the
// next tick's sense step reads fresh data.
func (e *Environment) updateVision() {
	for _, c := range e.Creatures {
		c.SetVision(e.raycast(c.Pos, c.Orient))
	}
}

// raycast steps outward one cell at a time along the orientation, up to
// MaxViewDistance or the grid edge. Unlike movement, vision never wraps.
// The first non-blank, non-fight cell becomes the reading: food and
// walls report their palette color, a creature reports its own current
// color. An exhausted scan reports nothing in view.
func (e *Environment) raycast(from Position, orient Orientation) VisionReading {
	dx, dy := orient.Delta()
	pos := from

	for step := 0; step < MaxViewDistance; step++ {
		pos.X += dx
		pos.Y += dy
		if !e.Grid.InBounds(pos) {
			break
		}

		dist := abs(pos.X-from.X) + abs(pos.Y-from.Y)

		switch cell := e.Grid.At(pos); cell.Kind {
		case BlankSpace, FightSpace:
			continue
		case FoodSpace:
			return VisionReading{InView: true, Dist: dist, Color: FoodColor, Kind: FoodSpace}
		case WallSpace:
			return VisionReading{InView: true, Dist: dist, Color: WallColor, Kind: WallSpace}
		case CreatureSpace:
			target, err := e.CreatureByID(cell.CreatureID)
			if err != nil {
				continue
			}
			return VisionReading{
				InView:   true,
				Dist:     dist,
				Color:    target.Color,
				Kind:     CreatureSpace,
				TargetID: cell.CreatureID,
			}
		}
	}

	return VisionReading{}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
