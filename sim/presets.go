package sim

// Built-in wall-only layouts. Each is tied to one fixed grid size;
// food and creature placement stay random regardless of preset use.
const (
	PresetSize = 64
	NumPresets = 8
)

// PresetNames lists the catalogue in index order.
var PresetNames = []string{
	"arena",
	"cross",
	"four-rooms",
	"pillars",
	"baffles",
	"diamond",
	"corridors",
	"checker",
}

// presetWalls returns the wall cells for one built-in layout. The
// index must already be validated against NumPresets.
func presetWalls(preset int) []Position {
	switch preset {
	case 0:
		return arenaWalls()
	case 1:
		return crossWalls()
	case 2:
		return fourRoomWalls()
	case 3:
		return pillarWalls()
	case 4:
		return baffleWalls()
	case 5:
		return diamondWalls()
	case 6:
		return corridorWalls()
	default:
		return checkerWalls()
	}
}

// arenaWalls rings the border.
func arenaWalls() []Position {
	var walls []Position
	for i := 0; i < PresetSize; i++ {
		walls = append(walls,
			Position{X: i, Y: 0},
			Position{X: i, Y: PresetSize - 1},
			Position{X: 0, Y: i},
			Position{X: PresetSize - 1, Y: i},
		)
	}
	return walls
}

// crossWalls draws a centered plus sign with a clear hub.
func crossWalls() []Position {
	var walls []Position
	mid := PresetSize / 2
	for i := 4; i < PresetSize-4; i++ {
		if abs(i-mid) <= 2 {
			continue
		}
		walls = append(walls, Position{X: i, Y: mid}, Position{X: mid, Y: i})
	}
	return walls
}

// fourRoomWalls splits the board into quadrants with one door per wall.
func fourRoomWalls() []Position {
	var walls []Position
	mid := PresetSize / 2
	door := PresetSize / 4
	for i := 0; i < PresetSize; i++ {
		if abs(i-door) > 1 && abs(i-(PresetSize-door)) > 1 {
			walls = append(walls, Position{X: i, Y: mid}, Position{X: mid, Y: i})
		}
	}
	return walls
}

// pillarWalls scatters a regular field of 2x2 pillars.
func pillarWalls() []Position {
	var walls []Position
	for y := 6; y < PresetSize-6; y += 8 {
		for x := 6; x < PresetSize-6; x += 8 {
			walls = append(walls,
				Position{X: x, Y: y},
				Position{X: x + 1, Y: y},
				Position{X: x, Y: y + 1},
				Position{X: x + 1, Y: y + 1},
			)
		}
	}
	return walls
}

// baffleWalls alternates partial horizontal walls, forcing S-shaped paths.
func baffleWalls() []Position {
	var walls []Position
	for row, y := 0, 8; y < PresetSize-4; row, y = row+1, y+10 {
		if row%2 == 0 {
			for x := 0; x < PresetSize-16; x++ {
				walls = append(walls, Position{X: x, Y: y})
			}
		} else {
			for x := 16; x < PresetSize; x++ {
				walls = append(walls, Position{X: x, Y: y})
			}
		}
	}
	return walls
}

// diamondWalls outlines a centered diamond.
func diamondWalls() []Position {
	var walls []Position
	mid := PresetSize / 2
	r := PresetSize/2 - 6
	for x := 0; x < PresetSize; x++ {
		for y := 0; y < PresetSize; y++ {
			if abs(x-mid)+abs(y-mid) == r {
				walls = append(walls, Position{X: x, Y: y})
			}
		}
	}
	return walls
}

// corridorWalls carves two long horizontal corridors.
func corridorWalls() []Position {
	var walls []Position
	for _, y := range []int{PresetSize / 3, 2 * PresetSize / 3} {
		for x := 4; x < PresetSize-4; x++ {
			walls = append(walls, Position{X: x, Y: y}, Position{X: x, Y: y + 1})
		}
	}
	return walls
}

// checkerWalls tiles sparse 3x3 blocks on alternating cells.
func checkerWalls() []Position {
	var walls []Position
	for by := 0; by < PresetSize/16; by++ {
		for bx := 0; bx < PresetSize/16; bx++ {
			if (bx+by)%2 == 0 {
				continue
			}
			ox, oy := bx*16+6, by*16+6
			for dy := 0; dy < 3; dy++ {
				for dx := 0; dx < 3; dx++ {
					walls = append(walls, Position{X: ox + dx, Y: oy + dy})
				}
			}
		}
	}
	return walls
}
