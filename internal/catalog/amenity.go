package catalog

import "fmt"

// Category classifies an amenity built inside a district.
type Category uint8

const (
	CategoryNone Category = iota
	Water
	Road
	Seaport
	Housing
	Commerce
	Medical
	Industry
	Park
	Amusement
	WoodWarehouse

	categoryCount
)

var categoryNames = [categoryCount]string{
	CategoryNone:  "None",
	Water:         "Water",
	Road:          "Road",
	Seaport:       "Seaport",
	Housing:       "Housing",
	Commerce:      "Commerce",
	Medical:       "Medical",
	Industry:      "Industry",
	Park:          "Park",
	Amusement:     "Amusement",
	WoodWarehouse: "Wood Warehouse",
}

func (c Category) String() string {
	if c < categoryCount {
		return categoryNames[c]
	}
	return "Unknown"
}

// IsTransport reports whether placing the category can change travel times.
func (c Category) IsTransport() bool {
	return c == Road || c == Seaport
}

// IsEmployment reports whether the category provides jobs.
func (c Category) IsEmployment() bool {
	return c == Commerce || c == Medical
}

func ParseCategory(s string) (Category, error) {
	key := normalizeName(s)
	for c := CategoryNone + 1; c < categoryCount; c++ {
		if normalizeName(categoryNames[c]) == key {
			return c, nil
		}
	}
	return CategoryNone, fmt.Errorf("unknown amenity category %q", s)
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Tier is a Low/Medium/High grade. It is used both for an amenity's usage
// and for a district's employment rate.
type Tier uint8

const (
	TierUnset Tier = iota
	Low
	Medium
	High
)

var tierNames = map[Tier]string{
	TierUnset: "",
	Low:       "Low",
	Medium:    "Medium",
	High:      "High",
}

func (t Tier) String() string {
	if s, ok := tierNames[t]; ok {
		return s
	}
	return "Unknown"
}

func ParseTier(s string) (Tier, error) {
	if s == "" {
		return TierUnset, nil
	}
	key := normalizeName(s)
	for t, name := range tierNames {
		if t != TierUnset && normalizeName(name) == key {
			return t, nil
		}
	}
	return TierUnset, fmt.Errorf("unknown tier %q", s)
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// AmenitySpec is the template an action outcome places into a district.
// Size and Density of 0 mean the field is not set.
type AmenitySpec struct {
	Category Category `json:"category"`
	Size     int      `json:"size,omitempty"`
	Density  int      `json:"density,omitempty"`
	Usage    Tier     `json:"usage,omitempty"`
}

// volumes maps size×density to capacity.
var volumes = map[int]int{1: 1, 2: 3, 4: 7, 8: 15, 16: 31}

// Volume returns the capacity for a size and density pair. Products outside
// the table, including unset fields, have no capacity.
func Volume(size, density int) int {
	return volumes[size*density]
}

func validFootprint(n int) bool {
	return n == 0 || n == 1 || n == 2 || n == 4
}
