package engine

import (
	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/world"
)

// RollOutcome is the last die roll and what came of it.
type RollOutcome struct {
	Face        int         `json:"face"`
	Fizzled     bool        `json:"fizzled"`
	Action      string      `json:"action"`
	Cell        world.Coord `json:"cell"`
	Description string      `json:"description"`
	Result      string      `json:"result,omitempty"`
}

type CardView struct {
	Card       catalog.CitizenCode `json:"card"`
	Attributes []catalog.Attribute `json:"attributes"`
	Selected   bool                `json:"selected"`
}

type ActionView struct {
	Index       int                   `json:"index"`
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Space       int                   `json:"space"`
	Requires    []catalog.Requirement `json:"requires"`
}

type DistrictView struct {
	Coord          world.Coord     `json:"coord"`
	Name           string          `json:"name"`
	RemainingSpace int             `json:"remaining_space"`
	Employment     catalog.Tier    `json:"employment"`
	Amenities      []world.Amenity `json:"amenities"`
	Assets         []world.Asset   `json:"assets"`
}

// Snapshot is the read-only view a renderer draws from.
type Snapshot struct {
	GameID       string         `json:"game_id"`
	Started      bool           `json:"started"`
	Day          int            `json:"day"`
	Calendar     string         `json:"calendar"`
	Topology     string         `json:"topology"`
	Hand         []CardView     `json:"hand"`
	DeckCount    int            `json:"deck_count"`
	DiscardCount int            `json:"discard_count"`
	SelectedCell *world.Coord   `json:"selected_cell"`
	Actions      []ActionView   `json:"actions"`
	Chosen       *ActionView    `json:"chosen_action"`
	LastRoll     *RollOutcome   `json:"last_roll"`
	Districts    []DistrictView `json:"districts"`
	Events       []Event        `json:"events"`
}

// Snapshot copies out the current state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Started:      e.started,
		Day:          e.day,
		Topology:     e.cfg.Topology.Name,
		DeckCount:    len(e.deck.CardsInDeck()),
		DiscardCount: len(e.deck.Discarded()),
		Hand:         []CardView{},
		Actions:      []ActionView{},
		Events:       e.Events(),
	}
	if e.started {
		s.GameID = e.id.String()
		s.Calendar = Calendar(e.day)
	}

	selected := e.deck.Selected()
	for _, code := range e.deck.Hand() {
		cit, _ := catalog.Lookup(code)
		s.Hand = append(s.Hand, CardView{
			Card:       code,
			Attributes: append([]catalog.Attribute(nil), cit.Attributes...),
			Selected:   containsCode(selected, code),
		})
	}

	if e.cell != nil {
		c := *e.cell
		s.SelectedCell = &c
		for i, a := range e.AvailableActions(c, selected) {
			s.Actions = append(s.Actions, actionView(i, a))
			if a == e.chosen {
				v := actionView(i, a)
				s.Chosen = &v
			}
		}
	}
	if e.lastRoll != nil {
		r := *e.lastRoll
		s.LastRoll = &r
	}

	for _, d := range e.grid.Districts() {
		c := d.Clone()
		s.Districts = append(s.Districts, DistrictView{
			Coord:          c.Coord,
			Name:           c.Name,
			RemainingSpace: c.RemainingSpace(),
			Employment:     EmploymentRate(c),
			Amenities:      c.Amenities,
			Assets:         c.Assets,
		})
	}
	return s
}

func actionView(i int, a *catalog.Action) ActionView {
	return ActionView{
		Index:       i,
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Space:       a.Space,
		Requires:    append([]catalog.Requirement(nil), a.Requires...),
	}
}

func containsCode(codes []catalog.CitizenCode, c catalog.CitizenCode) bool {
	for _, x := range codes {
		if x == c {
			return true
		}
	}
	return false
}
