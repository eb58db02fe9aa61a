package world

import (
	"fmt"
	"sort"

	"github.com/talgya/cardcity/internal/catalog"
)

// SpaceBudget is the footprint every district can hold.
const SpaceBudget = 7

// Grid holds every district created so far. It only grows: districts and
// amenities are never removed.
type Grid struct {
	districts map[Coord]*District
	topo      Topology
	gen       *Generator
}

// NewGrid creates an empty grid. New districts created by growth are seeded
// by gen.
func NewGrid(topo Topology, gen *Generator) *Grid {
	return &Grid{
		districts: make(map[Coord]*District),
		topo:      topo,
		gen:       gen,
	}
}

// Topology returns the layout the grid grows and connects roads with.
func (g *Grid) Topology() Topology {
	return g.topo
}

// Get returns the district at c, or nil if none has been created.
func (g *Grid) Get(c Coord) *District {
	return g.districts[c]
}

// District returns the district at c. When none exists a default one is
// synthesized without inserting it, so callers can ask "what if" questions.
func (g *Grid) District(c Coord) *District {
	if d, ok := g.districts[c]; ok {
		return d
	}
	if g.gen != nil {
		return g.gen.District(c)
	}
	return &District{Coord: c}
}

// Set places a district, replacing any at the same coordinate.
func (g *Grid) Set(d *District) {
	g.districts[d.Coord] = d
}

// Len returns the number of districts.
func (g *Grid) Len() int {
	return len(g.districts)
}

// Districts returns all districts ordered by row then column.
func (g *Grid) Districts() []*District {
	out := make([]*District, 0, len(g.districts))
	for _, d := range g.districts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Coord, out[j].Coord
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}

// AddAmenity appends an amenity to an existing district.
func (g *Grid) AddAmenity(c Coord, a Amenity) error {
	d := g.districts[c]
	if d == nil {
		return fmt.Errorf("no district at %s", c)
	}
	d.Amenities = append(d.Amenities, a)
	return nil
}

// EnsureGrown creates any missing districts around origin and returns the
// ones it created.
func (g *Grid) EnsureGrown(origin Coord) []*District {
	var created []*District
	for _, c := range neighbors(origin, g.topo.Growth) {
		if _, ok := g.districts[c]; ok {
			continue
		}
		d := g.District(c)
		g.districts[c] = d
		created = append(created, d)
	}
	return created
}

// RemainingSpace is SpaceBudget minus the footprint at c.
func (g *Grid) RemainingSpace(c Coord) int {
	return g.District(c).RemainingSpace()
}

// AgeAmenities adds a month to every housing amenity and returns how many
// were aged.
func (g *Grid) AgeAmenities() int {
	n := 0
	for _, d := range g.districts {
		for i := range d.Amenities {
			a := &d.Amenities[i]
			if a.Category != catalog.Housing {
				continue
			}
			age := 1
			if a.Age != nil {
				age = *a.Age + 1
			}
			a.Age = &age
			n++
		}
	}
	return n
}

// CategoryCounts returns how many amenities of each category are placed.
func CategoryCounts(g *Grid) map[catalog.Category]int {
	counts := make(map[catalog.Category]int)
	for _, d := range g.districts {
		for _, a := range d.Amenities {
			counts[a.Category]++
		}
	}
	return counts
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(topology=%s, districts=%d)", g.topo.Name, g.Len())
}
