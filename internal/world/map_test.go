package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/cardcity/internal/catalog"
)

func newTestGrid(topo Topology) *Grid {
	g := NewGrid(topo, NewGenerator(GenConfig{Seed: 7, LakeLevel: 0.30, TrackLevel: 0.68}))
	g.Set(StartingDistrict())
	return g
}

func TestDistrictDoesNotMutate(t *testing.T) {
	g := newTestGrid(Brick)
	d := g.District(Coord{X: 4, Y: 2})
	require.NotNil(t, d)
	assert.Equal(t, Coord{X: 4, Y: 2}, d.Coord)
	assert.Nil(t, g.Get(Coord{X: 4, Y: 2}))
	assert.Equal(t, 1, g.Len())
}

func TestEnsureGrownBrick(t *testing.T) {
	g := newTestGrid(Brick)
	created := g.EnsureGrown(Coord{})
	require.Len(t, created, 6)

	for _, c := range []Coord{{1, -1}, {-1, 1}, {2, 0}, {-2, 0}, {1, 1}, {-1, -1}} {
		assert.NotNil(t, g.Get(c), "missing %s", c)
	}
	assert.Equal(t, 7, g.Len())

	// Growing again from a neighbor only adds what is missing.
	created = g.EnsureGrown(Coord{X: 2, Y: 0})
	assert.Len(t, created, 3)
	assert.Equal(t, 10, g.Len())

	// The origin is never replaced.
	assert.Equal(t, "Old Town", g.Get(Coord{}).Name)
}

func TestEnsureGrownIsDeterministic(t *testing.T) {
	a := newTestGrid(Brick)
	b := newTestGrid(Brick)
	a.EnsureGrown(Coord{})
	b.EnsureGrown(Coord{})
	for _, d := range a.Districts() {
		other := b.Get(d.Coord)
		require.NotNil(t, other)
		assert.Equal(t, d.Name, other.Name)
		assert.Equal(t, d.Amenities, other.Amenities)
	}
}

func TestRemainingSpace(t *testing.T) {
	g := newTestGrid(Brick)
	assert.Equal(t, SpaceBudget-1, g.RemainingSpace(Coord{}))

	require.NoError(t, g.AddAmenity(Coord{}, Amenity{Category: catalog.Housing, Size: 2, Density: 1}))
	assert.Equal(t, SpaceBudget-3, g.RemainingSpace(Coord{}))

	assert.Error(t, g.AddAmenity(Coord{X: 9, Y: 9}, Amenity{Category: catalog.Road}))
}

func TestAgeAmenities(t *testing.T) {
	g := newTestGrid(Brick)
	require.NoError(t, g.AddAmenity(Coord{}, Amenity{Category: catalog.Housing, Size: 1, Density: 1, Usage: catalog.Low}))
	before := g.Get(Coord{}).Clone()

	assert.Equal(t, 1, g.AgeAmenities())
	assert.Equal(t, 1, g.AgeAmenities())

	after := g.Get(Coord{})
	water, homes := after.Amenities[0], after.Amenities[1]
	assert.Equal(t, before.Amenities[0], water)
	assert.Nil(t, water.Age)
	require.NotNil(t, homes.Age)
	assert.Equal(t, 2, *homes.Age)
	assert.Equal(t, before.Amenities[1].Usage, homes.Usage)
	assert.Equal(t, before.Amenities[1].Size, homes.Size)
}

func TestDistrictsOrdered(t *testing.T) {
	g := newTestGrid(Brick)
	g.EnsureGrown(Coord{})
	ds := g.Districts()
	for i := 1; i < len(ds); i++ {
		a, b := ds[i-1].Coord, ds[i].Coord
		assert.True(t, a.Y < b.Y || (a.Y == b.Y && a.X < b.X), "%s before %s", a, b)
	}
}

func TestClone(t *testing.T) {
	age := 3
	d := &District{Name: "x", Amenities: []Amenity{{Category: catalog.Housing, Age: &age}}}
	c := d.Clone()
	*c.Amenities[0].Age = 9
	assert.Equal(t, 3, *d.Amenities[0].Age)
}

func TestParseTopology(t *testing.T) {
	topo, err := ParseTopology("")
	require.NoError(t, err)
	assert.Equal(t, Brick.Name, topo.Name)

	topo, err = ParseTopology("square")
	require.NoError(t, err)
	assert.Len(t, topo.Roads, 4)

	_, err = ParseTopology("hex")
	assert.Error(t, err)
}

func TestCategoryCounts(t *testing.T) {
	g := newTestGrid(Square)
	require.NoError(t, g.AddAmenity(Coord{}, Amenity{Category: catalog.Housing, Size: 1, Density: 1}))
	require.NoError(t, g.AddAmenity(Coord{}, Amenity{Category: catalog.Housing, Size: 1, Density: 2}))

	counts := CategoryCounts(g)
	assert.Equal(t, 1, counts[catalog.Water])
	assert.Equal(t, 2, counts[catalog.Housing])
	assert.Zero(t, counts[catalog.Road])
	assert.Equal(t, "Grid(topology=square, districts=1)", g.String())
}
