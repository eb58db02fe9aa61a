package catalog

// Requirement asks for at least Count selected cards carrying Attribute.
type Requirement struct {
	Attribute Attribute `json:"attribute"`
	Count     int       `json:"count"`
}

// Outcome is what a successful roll places, with its narrative.
type Outcome struct {
	Key         string      `json:"key"`
	Amenity     AmenitySpec `json:"amenity"`
	Description string      `json:"description"`
	Result      string      `json:"result"`
}

// RollRow maps a die face to an outcome. When overrides the outcome for a
// given district employment tier.
type RollRow struct {
	Roll    int               `json:"roll"`
	Outcome *Outcome          `json:"outcome"`
	When    map[Tier]*Outcome `json:"when,omitempty"`
}

// Action is a construction option from the catalog.
type Action struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Requires    []Requirement `json:"requires"`
	Space       int           `json:"space"`
	Employment  Tier          `json:"employment,omitempty"`
	Rows        []RollRow     `json:"rows"`
}

// Result is a concrete roll result once the district's state is known.
type Result struct {
	Roll    int
	Outcome Outcome
}

// Results evaluates the action's rolls table against a district employment
// tier, yielding one result per authored row in row order.
func (a *Action) Results(rate Tier) []Result {
	out := make([]Result, 0, len(a.Rows))
	for _, row := range a.Rows {
		o := row.Outcome
		if alt, ok := row.When[rate]; ok {
			o = alt
		}
		out = append(out, Result{Roll: row.Roll, Outcome: *o})
	}
	return out
}

// Satisfied reports whether the given cards meet every requirement.
func (a *Action) Satisfied(cards []Citizen) bool {
	for _, req := range a.Requires {
		n := 0
		for _, c := range cards {
			if c.Has(req.Attribute) {
				n++
			}
		}
		if n < req.Count {
			return false
		}
	}
	return true
}
