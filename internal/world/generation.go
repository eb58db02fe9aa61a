// District generation using layered simplex noise.
// Each coordinate samples its own noise, so a district looks the same no
// matter when growth reaches it.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/cardcity/internal/catalog"
)

// GenConfig holds district generation parameters.
type GenConfig struct {
	Seed       int64   // Noise seed (0 = random)
	LakeLevel  float64 // Below this water noise a district starts with a lake
	TrackLevel float64 // Above this track noise a district starts with a road
}

// DefaultGenConfig returns the tuning used in play.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:       0,
		LakeLevel:  0.30,
		TrackLevel: 0.68,
	}
}

// Generator seeds new districts deterministically from their coordinates.
type Generator struct {
	cfg    GenConfig
	water  opensimplex.Noise
	tracks opensimplex.Noise
	names  opensimplex.Noise
}

// NewGenerator creates a generator. A zero seed picks one at random.
func NewGenerator(cfg GenConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = rand.Int63()
	}
	return &Generator{
		cfg:    cfg,
		water:  opensimplex.NewNormalized(cfg.Seed),
		tracks: opensimplex.NewNormalized(cfg.Seed + 1),
		names:  opensimplex.NewNormalized(cfg.Seed + 2),
	}
}

// Seed returns the effective noise seed.
func (g *Generator) Seed() int64 {
	return g.cfg.Seed
}

// District builds the default district for c. It does not touch any grid.
func (g *Generator) District(c Coord) *District {
	x, y := float64(c.X), float64(c.Y)

	d := &District{
		Coord: c,
		Name:  districtName(g.names.Eval2(x*0.9, y*0.9), g.names.Eval2(y*0.7+31, x*0.7-17)),
	}

	if octaveNoise(g.water, x, y, 3, 0.15, 0.5) < g.cfg.LakeLevel {
		d.Amenities = append(d.Amenities, Amenity{Category: catalog.Water, Size: 1, Density: 4})
	}
	if octaveNoise(g.tracks, x, y, 2, 0.35, 0.5) > g.cfg.TrackLevel {
		d.Amenities = append(d.Amenities, Amenity{Category: catalog.Road})
	}
	return d
}

// StartingDistrict is the seeded district every game begins with.
func StartingDistrict() *District {
	return &District{
		Coord: Coord{},
		Name:  "Old Town",
		Amenities: []Amenity{
			{Category: catalog.Water, Size: 1, Density: 4},
		},
	}
}

var (
	namePrefixes = []string{"North", "South", "East", "West", "Upper", "Lower", "Old", "New", "Little", "Great"}
	nameRoots    = []string{"Harbor", "Hill", "Market", "Mill", "Bridge", "Field", "Gate", "Wharf", "Green", "Ford", "Cross", "Heath"}
)

func districtName(a, b float64) string {
	return namePrefixes[pick(a, len(namePrefixes))] + " " + nameRoots[pick(b, len(nameRoots))]
}

// pick maps a normalized noise sample onto an index in [0, n).
func pick(v float64, n int) int {
	i := int(v * float64(n))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
