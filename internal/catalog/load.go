package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed actions.yaml
var actionsYAML []byte

type rawRequirement struct {
	Attribute string `yaml:"attribute"`
	Count     int    `yaml:"count"`
}

type rawAmenity struct {
	Category string `yaml:"category"`
	Size     int    `yaml:"size"`
	Density  int    `yaml:"density"`
	Usage    string `yaml:"usage"`
}

type rawOutcome struct {
	Amenity     rawAmenity `yaml:"amenity"`
	Description string     `yaml:"description"`
	Result      string     `yaml:"result"`
}

type rawRoll struct {
	Roll    int               `yaml:"roll"`
	Outcome string            `yaml:"outcome"`
	When    map[string]string `yaml:"when"`
}

type rawAction struct {
	ID          string                `yaml:"id"`
	Name        string                `yaml:"name"`
	Description string                `yaml:"description"`
	Requires    []rawRequirement      `yaml:"requires"`
	Space       int                   `yaml:"space"`
	Employment  string                `yaml:"employment"`
	Outcomes    map[string]rawOutcome `yaml:"outcomes"`
	Rolls       []rawRoll             `yaml:"rolls"`
}

var (
	actionsOnce sync.Once
	actions     []*Action
	actionsErr  error
)

// Actions returns the built-in action catalog in catalog order. The slice and
// its actions are shared and must not be modified.
func Actions() []*Action {
	actionsOnce.Do(func() {
		actions, actionsErr = ParseActions(actionsYAML)
	})
	if actionsErr != nil {
		panic(fmt.Errorf("load action catalog: %w", actionsErr))
	}
	return actions
}

// ParseActions decodes an action catalog document.
func ParseActions(data []byte) ([]*Action, error) {
	var raw []rawAction
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}

	seen := make(map[string]bool, len(raw))
	out := make([]*Action, 0, len(raw))
	for i, ra := range raw {
		if ra.ID == "" {
			return nil, fmt.Errorf("action #%d: missing id", i)
		}
		if seen[ra.ID] {
			return nil, fmt.Errorf("action %s: duplicate id", ra.ID)
		}
		seen[ra.ID] = true

		a, err := compileAction(ra)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", ra.ID, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func compileAction(ra rawAction) (*Action, error) {
	emp, err := ParseTier(ra.Employment)
	if err != nil {
		return nil, err
	}
	if ra.Space < 0 {
		return nil, fmt.Errorf("negative space %d", ra.Space)
	}

	a := &Action{
		ID:          ra.ID,
		Name:        ra.Name,
		Description: ra.Description,
		Space:       ra.Space,
		Employment:  emp,
	}

	for _, rr := range ra.Requires {
		attr, err := ParseAttribute(rr.Attribute)
		if err != nil {
			return nil, err
		}
		if rr.Count < 1 {
			return nil, fmt.Errorf("requirement %s: count must be positive", attr)
		}
		a.Requires = append(a.Requires, Requirement{Attribute: attr, Count: rr.Count})
	}

	outcomes := make(map[string]*Outcome, len(ra.Outcomes))
	for key, ro := range ra.Outcomes {
		spec, err := compileAmenity(ro.Amenity)
		if err != nil {
			return nil, fmt.Errorf("outcome %s: %w", key, err)
		}
		outcomes[key] = &Outcome{
			Key:         key,
			Amenity:     spec,
			Description: ro.Description,
			Result:      ro.Result,
		}
	}

	faces := make(map[int]bool, 6)
	for _, rr := range ra.Rolls {
		if rr.Roll < 1 || rr.Roll > 6 {
			return nil, fmt.Errorf("roll %d out of range", rr.Roll)
		}
		if faces[rr.Roll] {
			return nil, fmt.Errorf("roll %d listed twice", rr.Roll)
		}
		faces[rr.Roll] = true

		o, ok := outcomes[rr.Outcome]
		if !ok {
			return nil, fmt.Errorf("roll %d: unknown outcome %q", rr.Roll, rr.Outcome)
		}
		row := RollRow{Roll: rr.Roll, Outcome: o}
		for tierName, key := range rr.When {
			tier, err := ParseTier(tierName)
			if err != nil || tier == TierUnset {
				return nil, fmt.Errorf("roll %d: bad tier %q", rr.Roll, tierName)
			}
			alt, ok := outcomes[key]
			if !ok {
				return nil, fmt.Errorf("roll %d: unknown outcome %q", rr.Roll, key)
			}
			if row.When == nil {
				row.When = make(map[Tier]*Outcome, len(rr.When))
			}
			row.When[tier] = alt
		}
		a.Rows = append(a.Rows, row)
	}
	return a, nil
}

func compileAmenity(ra rawAmenity) (AmenitySpec, error) {
	cat, err := ParseCategory(ra.Category)
	if err != nil {
		return AmenitySpec{}, err
	}
	usage, err := ParseTier(ra.Usage)
	if err != nil {
		return AmenitySpec{}, err
	}
	if !validFootprint(ra.Size) || !validFootprint(ra.Density) {
		return AmenitySpec{}, fmt.Errorf("size and density must be 1, 2 or 4 (got %d, %d)", ra.Size, ra.Density)
	}
	return AmenitySpec{Category: cat, Size: ra.Size, Density: ra.Density, Usage: usage}, nil
}

// ActionByID finds a catalog action.
func ActionByID(id string) (*Action, bool) {
	for _, a := range Actions() {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}
