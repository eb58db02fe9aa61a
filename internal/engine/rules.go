package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/errx"
	"github.com/talgya/cardcity/internal/logs"
	"github.com/talgya/cardcity/internal/world"
)

// EmploymentRate grades a district's commerce and medical capacity E against
// its housing capacity H by the ratio E/(2H): at least 19/20 is High, at
// least 9/10 is Medium, anything less is Low. A district with neither is
// Medium.
func EmploymentRate(d *world.District) catalog.Tier {
	housing, jobs := 0, 0
	for _, a := range d.Amenities {
		switch {
		case a.Category == catalog.Housing:
			housing += a.Volume()
		case a.Category.IsEmployment():
			jobs += a.Volume()
		}
	}
	switch {
	case housing == 0 && jobs == 0:
		return catalog.Medium
	case 20*jobs >= 19*2*housing:
		return catalog.High
	case 10*jobs >= 9*2*housing:
		return catalog.Medium
	default:
		return catalog.Low
	}
}

// EmploymentRate grades the district at c, existing or not.
func (e *Engine) EmploymentRate(c world.Coord) catalog.Tier {
	return EmploymentRate(e.grid.District(c))
}

// Available filters actions, keeping catalog order, to those the cards
// satisfy and the district has room and the right employment tier for.
func Available(actions []*catalog.Action, d *world.District, cards []catalog.Citizen) []*catalog.Action {
	var out []*catalog.Action
	remaining := d.RemainingSpace()
	rate := EmploymentRate(d)
	for _, a := range actions {
		if !a.Satisfied(cards) {
			continue
		}
		if remaining < a.Space {
			continue
		}
		if a.Employment != catalog.TierUnset && a.Employment != rate {
			continue
		}
		out = append(out, a)
	}
	return out
}

// AvailableActions lists the catalog actions the given cards unlock at c.
func (e *Engine) AvailableActions(c world.Coord, codes []catalog.CitizenCode) []*catalog.Action {
	cards := make([]catalog.Citizen, 0, len(codes))
	for _, code := range codes {
		if cit, ok := catalog.Lookup(code); ok {
			cards = append(cards, cit)
		}
	}
	return Available(e.actions, e.grid.District(c), cards)
}

// ResolveRoll picks the first result for the die face under the district's
// employment tier. It reports false when the face has no row.
func ResolveRoll(a *catalog.Action, face int, rate catalog.Tier) (catalog.Result, bool) {
	for _, r := range a.Results(rate) {
		if r.Roll == face {
			return r, true
		}
	}
	return catalog.Result{}, false
}

// ApplyResult builds the result's amenity at c, grows the grid around it,
// spends the given cards and clears the chosen action and cell. Travel times
// are recomputed when a road or seaport appears, whether built here or
// seeded into a newly grown district.
func (e *Engine) ApplyResult(c world.Coord, r catalog.Result, cards []catalog.CitizenCode) ([]Event, error) {
	d := e.grid.Get(c)
	if d == nil {
		return nil, errx.ErrInternal.WithCause(fmt.Errorf("no district at %s", c))
	}
	amenity := world.NewAmenity(r.Outcome.Amenity)
	if err := e.grid.AddAmenity(c, amenity); err != nil {
		return nil, errx.ErrInternal.WithCause(err)
	}

	ev := []Event{e.event("build", fmt.Sprintf("%s: %s", d.Name, r.Outcome.Result))}

	created := e.grid.EnsureGrown(c)
	transport := amenity.Category.IsTransport()
	if len(created) > 0 {
		ev = append(ev, e.event("growth", fmt.Sprintf("The city spreads: %s", districtNames(created))))
	}
	for _, nd := range created {
		if nd.Has(catalog.Road) || nd.Has(catalog.Seaport) {
			transport = true
		}
	}

	spent := e.deck.Discard(cards)
	e.chosen = nil
	e.cell = nil

	if transport {
		n := world.PropagateTravelTimes(e.grid)
		ev = append(ev, e.event("transport", fmt.Sprintf("Travel times updated: %d seaport links", n)))
	}

	logs.Info("amenity built",
		zap.String("game", e.id.String()),
		zap.Stringer("cell", c),
		zap.Stringer("category", amenity.Category),
		zap.Stringer("usage", amenity.Usage),
		zap.Int("grown", len(created)),
		zap.Int("spent", len(spent)),
	)
	e.record(ev...)
	return ev, nil
}

func districtNames(ds []*world.District) string {
	out := ""
	for i, d := range ds {
		switch {
		case i == 0:
		case i == len(ds)-1:
			out += " and "
		default:
			out += ", "
		}
		out += d.Name
	}
	return out
}
