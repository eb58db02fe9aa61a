// Package world provides the district grid, its growth rules and travel-time
// propagation. Districts are keyed by integer (x, y) coordinates.
package world

import "fmt"

// Coord is a district position on the grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add offsets the coordinate.
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X + d.X, Y: c.Y + d.Y}
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Topology names the neighbor offsets a map layout uses for growth and for
// road connections.
type Topology struct {
	Name   string
	Growth []Coord
	Roads  []Coord
}

// BrickDirections are the six cells touching a district on the offset
// (brick) layout: the rows above and below plus left and right.
var BrickDirections = []Coord{
	{X: 1, Y: -1},
	{X: -1, Y: 1},
	{X: 2, Y: 0},
	{X: -2, Y: 0},
	{X: 1, Y: 1},
	{X: -1, Y: -1},
}

// OrthogonalDirections are the four edge-sharing cells of a square grid.
var OrthogonalDirections = []Coord{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}

var (
	// Brick is the pannable offset map. Every cell it creates has x+y even,
	// so roads connect along the same six directions growth uses.
	Brick = Topology{Name: "brick", Growth: BrickDirections, Roads: BrickDirections}

	// Square is the plain grid of the early prototypes: roads run
	// orthogonally and growth fills all eight surrounding cells.
	Square = Topology{
		Name:   "square",
		Growth: append(append([]Coord{}, OrthogonalDirections...), Coord{1, 1}, Coord{1, -1}, Coord{-1, 1}, Coord{-1, -1}),
		Roads:  OrthogonalDirections,
	}
)

// ParseTopology resolves a topology by name.
func ParseTopology(name string) (Topology, error) {
	switch name {
	case "", Brick.Name:
		return Brick, nil
	case Square.Name:
		return Square, nil
	default:
		return Topology{}, fmt.Errorf("unknown topology %q", name)
	}
}

func neighbors(c Coord, dirs []Coord) []Coord {
	out := make([]Coord, len(dirs))
	for i, d := range dirs {
		out[i] = c.Add(d)
	}
	return out
}
