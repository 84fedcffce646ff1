// Package sim implements the grid-world evolution engine: the board,
// the creatures that inhabit it, and the deterministic per-tick state
// machine that drives them.
package sim

// SpaceKind identifies what occupies a single grid cell.
type SpaceKind uint8

const (
	BlankSpace SpaceKind = iota
	CreatureSpace
	FoodSpace
	WallSpace
	FightSpace
)

// String returns a short name for the space kind.
func (k SpaceKind) String() string {
	switch k {
	case BlankSpace:
		return "blank"
	case CreatureSpace:
		return "creature"
	case FoodSpace:
		return "food"
	case WallSpace:
		return "wall"
	case FightSpace:
		return "fight"
	}
	return "unknown"
}

// Space is the tagged state of one grid cell. CreatureID is meaningful
// only for CreatureSpace, TTL only for FightSpace.
type Space struct {
	Kind       SpaceKind `json:"kind"`
	CreatureID int       `json:"creature_id,omitempty"`
	TTL        int       `json:"ttl,omitempty"`
}

// Position is a 0-based cell coordinate on the grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Orientation is the facing of a creature. The declaration order is the
// clockwise rotation cycle Up -> Right -> Down -> Left.
type Orientation uint8

const (
	Up Orientation = iota
	Right
	Down
	Left
)

// NumOrientations is the number of distinct facings.
const NumOrientations = 4

// RotateCW returns the orientation one quarter turn clockwise.
func (o Orientation) RotateCW() Orientation {
	return (o + 1) % NumOrientations
}

// RotateCCW returns the orientation one quarter turn counter-clockwise.
func (o Orientation) RotateCCW() Orientation {
	return (o + NumOrientations - 1) % NumOrientations
}

// Delta returns the unit step along this orientation. Y grows downward.
func (o Orientation) Delta() (dx, dy int) {
	switch o {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	default:
		return -1, 0
	}
}

// SensorCode is the numeric encoding of an orientation fed to brain
// inputs. The values are part of the inherited sensor contract and do
// not follow the rotation cycle.
func (o Orientation) SensorCode() float64 {
	switch o {
	case Up:
		return 0
	case Left:
		return 1
	case Down:
		return 2
	default:
		return 3
	}
}

// Color is an RGB creature/display color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Fixed palette colors reported by vision for non-creature spaces.
var (
	FoodColor            = Color{R: 40, G: 255, B: 40}
	WallColor            = Color{R: 200, G: 200, B: 200}
	DefaultCreatureColor = Color{R: 0, G: 75, B: 255}
)

func satAddByte(v uint8, d uint8) uint8 {
	if v > 255-d {
		return 255
	}
	return v + d
}

func satSubByte(v uint8, d uint8) uint8 {
	if v < d {
		return 0
	}
	return v - d
}

// Grid is the rectangular board. Cells are stored row-major (y*Width+x).
type Grid struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Cells  []Space `json:"cells"`
}

// NewGrid returns an all-blank grid of the given dimensions.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]Space, width*height),
	}
}

// InBounds reports whether p is a valid cell coordinate.
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// At returns the state of the cell at p.
func (g *Grid) At(p Position) Space {
	return g.Cells[p.Y*g.Width+p.X]
}

// Set overwrites the cell at p.
func (g *Grid) Set(p Position, s Space) {
	g.Cells[p.Y*g.Width+p.X] = s
}

// Area returns the total number of cells.
func (g *Grid) Area() int {
	return g.Width * g.Height
}
