package engine

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/deck"
	"github.com/talgya/cardcity/internal/entropy"
	"github.com/talgya/cardcity/internal/logs"
	"github.com/talgya/cardcity/internal/world"
)

// State is what a save holds. Selections, the chosen action and travel
// times are not part of it: selections reset on load and travel times are
// derived.
type State struct {
	ID         uuid.UUID
	Seed       int64
	Day        int
	Topology   string
	LakeLevel  float64
	TrackLevel float64
	Available  []catalog.CitizenCode
	Hand       []catalog.CitizenCode
	Discarded  []catalog.CitizenCode
	Districts  []*world.District
	Events     []Event
}

// State copies out the persistent part of a started game.
func (e *Engine) State() State {
	s := State{
		ID:         e.id,
		Seed:       e.cfg.Seed,
		Day:        e.day,
		Topology:   e.cfg.Topology.Name,
		LakeLevel:  e.cfg.LakeLevel,
		TrackLevel: e.cfg.TrackLevel,
		Available:  e.deck.Available(),
		Hand:       e.deck.Hand(),
		Discarded:  e.deck.Discarded(),
		Events:     e.Events(),
	}
	for _, d := range e.grid.Districts() {
		c := d.Clone()
		c.Assets = nil
		s.Districts = append(s.Districts, c)
	}
	return s
}

// Restore rebuilds a started game. A nil src continues the seeded sequence
// for the saved day.
func Restore(s State, src entropy.Source) (*Engine, error) {
	if s.ID == uuid.Nil {
		return nil, fmt.Errorf("restore: missing game id")
	}
	if s.Day < 1 {
		return nil, fmt.Errorf("restore: invalid day %d", s.Day)
	}
	topo, err := world.ParseTopology(s.Topology)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	if src == nil {
		src = entropy.Derive(s.Seed, s.Day)
	}

	e := New(Config{
		Seed:             s.Seed,
		StartingCitizens: s.Available,
		Topology:         topo,
		LakeLevel:        s.LakeLevel,
		TrackLevel:       s.TrackLevel,
	}, src)

	dm, err := deck.Restore(src, s.Available, s.Hand, s.Discarded)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}

	grid := world.NewGrid(topo, e.gen)
	for _, d := range s.Districts {
		if grid.Get(d.Coord) != nil {
			return nil, fmt.Errorf("restore: district %s listed twice", d.Coord)
		}
		grid.Set(d.Clone())
	}
	if grid.Get(world.Coord{}) == nil {
		return nil, fmt.Errorf("restore: starting district missing")
	}
	world.PropagateTravelTimes(grid)

	e.id = s.ID
	e.started = true
	e.day = s.Day
	e.deck = dm
	e.grid = grid
	e.events = slices.Clone(s.Events)

	logs.Info("game restored",
		zap.String("game", e.id.String()),
		zap.Int("day", e.day),
		zap.Int("districts", grid.Len()),
	)
	e.record(e.event("game", fmt.Sprintf("Game resumed on %s", Calendar(e.day))))
	return e, nil
}
