// Package engine owns the state of one city game and applies player intents
// to it. Every intent runs to completion, including grid growth and
// travel-time recomputation, before the next one is accepted; callers that
// share an Engine between goroutines must serialize access.
package engine

import (
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/deck"
	"github.com/talgya/cardcity/internal/entropy"
	"github.com/talgya/cardcity/internal/logs"
	"github.com/talgya/cardcity/internal/world"
)

// MaxEvents bounds the event log.
const MaxEvents = 200

// Config tunes a new game.
type Config struct {
	Seed             int64 // World seed (0 = random)
	StartingCitizens []catalog.CitizenCode
	Topology         world.Topology
	LakeLevel        float64
	TrackLevel       float64
}

// DefaultConfig returns the configuration used in play.
func DefaultConfig() Config {
	gen := world.DefaultGenConfig()
	return Config{
		StartingCitizens: catalog.StartingCitizens,
		Topology:         world.Brick,
		LakeLevel:        gen.LakeLevel,
		TrackLevel:       gen.TrackLevel,
	}
}

// Event is a notable occurrence in the game.
type Event struct {
	Day         int    `json:"day"`
	Description string `json:"description"`
	Category    string `json:"category"` // "game", "day", "build", "fizzle", "growth", "transport"
}

// Engine holds the complete game state.
type Engine struct {
	cfg     Config
	src     entropy.Source
	gen     *world.Generator
	actions []*catalog.Action

	id      uuid.UUID
	started bool
	day     int
	grid    *world.Grid
	deck    *deck.Manager

	cell     *world.Coord
	chosen   *catalog.Action
	lastRoll *RollOutcome
	events   []Event
}

// New creates an engine. Nothing is dealt until StartGame. A nil src draws
// from a source seeded by cfg.Seed. Zero-valued fields take their defaults.
func New(cfg Config, src entropy.Source) *Engine {
	if cfg.Seed == 0 {
		cfg.Seed = entropy.CryptoSeed()
	}
	if cfg.StartingCitizens == nil {
		cfg.StartingCitizens = catalog.StartingCitizens
	}
	if cfg.Topology.Name == "" {
		cfg.Topology = world.Brick
	}
	gen := world.DefaultGenConfig()
	if cfg.LakeLevel == 0 {
		cfg.LakeLevel = gen.LakeLevel
	}
	if cfg.TrackLevel == 0 {
		cfg.TrackLevel = gen.TrackLevel
	}
	if src == nil {
		src = entropy.New(cfg.Seed)
	}

	e := &Engine{
		cfg:     cfg,
		src:     src,
		actions: catalog.Actions(),
		gen: world.NewGenerator(world.GenConfig{
			Seed:       cfg.Seed,
			LakeLevel:  cfg.LakeLevel,
			TrackLevel: cfg.TrackLevel,
		}),
		deck: deck.New(src),
	}
	e.resetGrid()
	return e
}

func (e *Engine) resetGrid() {
	e.grid = world.NewGrid(e.cfg.Topology, e.gen)
	e.grid.Set(world.StartingDistrict())
}

// ID returns the current game's id; it is the zero UUID before StartGame.
func (e *Engine) ID() uuid.UUID { return e.id }

// Seed returns the world seed.
func (e *Engine) Seed() int64 { return e.cfg.Seed }

// Day returns the day counter, starting at 1.
func (e *Engine) Day() int { return e.day }

// Started reports whether a game is in progress.
func (e *Engine) Started() bool { return e.started }

// Grid exposes the district grid for reading.
func (e *Engine) Grid() *world.Grid { return e.grid }

// Deck exposes the card partitions for reading.
func (e *Engine) Deck() *deck.Manager { return e.deck }

// Events returns a copy of the recent event log.
func (e *Engine) Events() []Event { return slices.Clone(e.events) }

func (e *Engine) record(events ...Event) {
	e.events = append(e.events, events...)
	if len(e.events) > MaxEvents {
		e.events = slices.Clone(e.events[len(e.events)-MaxEvents:])
	}
	for _, ev := range events {
		logs.Debug("event",
			zap.Int("day", ev.Day),
			zap.String("category", ev.Category),
			zap.String("description", ev.Description),
		)
	}
}

func (e *Engine) event(category, description string) Event {
	return Event{Day: e.day, Description: description, Category: category}
}
