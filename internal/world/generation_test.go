package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/cardcity/internal/catalog"
)

func TestGeneratorDeterministic(t *testing.T) {
	cfg := GenConfig{Seed: 42, LakeLevel: 0.30, TrackLevel: 0.68}
	a, b := NewGenerator(cfg), NewGenerator(cfg)
	for x := -10; x <= 10; x++ {
		for y := -10; y <= 10; y++ {
			c := Coord{X: x, Y: y}
			assert.Equal(t, a.District(c), b.District(c))
		}
	}
	assert.Equal(t, int64(42), a.Seed())
}

func TestGeneratorRandomSeed(t *testing.T) {
	g := NewGenerator(GenConfig{})
	assert.NotZero(t, g.Seed())
}

func TestGeneratorLevels(t *testing.T) {
	// Noise is normalized to [0, 1], so these levels force every district
	// to start with both a lake and a road, or with neither.
	all := NewGenerator(GenConfig{Seed: 3, LakeLevel: 2, TrackLevel: -1})
	none := NewGenerator(GenConfig{Seed: 3, LakeLevel: -1, TrackLevel: 2})
	for x := 0; x < 8; x++ {
		c := Coord{X: x, Y: x % 2}
		d := all.District(c)
		assert.True(t, d.Has(catalog.Water))
		assert.True(t, d.Has(catalog.Road))
		assert.LessOrEqual(t, d.UsedSpace(), SpaceBudget)
		assert.Empty(t, none.District(c).Amenities)
		assert.NotEmpty(t, d.Name)
	}
}

func TestStartingDistrict(t *testing.T) {
	d := StartingDistrict()
	assert.Equal(t, Coord{}, d.Coord)
	assert.Equal(t, []Amenity{{Category: catalog.Water, Size: 1, Density: 4}}, d.Amenities)
}
