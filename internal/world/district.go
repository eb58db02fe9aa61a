package world

import "github.com/talgya/cardcity/internal/catalog"

// Amenity is a built feature inside a district. Size and Density of 0 mean
// unset; Age is nil until the amenity first ages.
type Amenity struct {
	Category catalog.Category `json:"category"`
	Size     int              `json:"size,omitempty"`
	Density  int              `json:"density,omitempty"`
	Usage    catalog.Tier     `json:"usage,omitempty"`
	Age      *int             `json:"age,omitempty"`
}

// NewAmenity instantiates a catalog template.
func NewAmenity(spec catalog.AmenitySpec) Amenity {
	return Amenity{
		Category: spec.Category,
		Size:     spec.Size,
		Density:  spec.Density,
		Usage:    spec.Usage,
	}
}

// Volume is the amenity's capacity used for employment math.
func (a Amenity) Volume() int {
	return catalog.Volume(a.Size, a.Density)
}

// Asset is a cached travel time from a transport hub.
type Asset struct {
	Category catalog.Category `json:"category"`
	Minutes  int              `json:"minutes"`
	Source   Coord            `json:"source"`
}

// District is one cell of the grid.
type District struct {
	Coord     Coord     `json:"coord"`
	Name      string    `json:"name"`
	Amenities []Amenity `json:"amenities"`
	Assets    []Asset   `json:"assets,omitempty"`
}

// Has reports whether any amenity of the category is present.
func (d *District) Has(c catalog.Category) bool {
	for _, a := range d.Amenities {
		if a.Category == c {
			return true
		}
	}
	return false
}

// UsedSpace sums the footprint of all amenities.
func (d *District) UsedSpace() int {
	n := 0
	for _, a := range d.Amenities {
		n += a.Size
	}
	return n
}

// RemainingSpace is what is left of the SpaceBudget.
func (d *District) RemainingSpace() int {
	return SpaceBudget - d.UsedSpace()
}

// Clone returns a deep copy.
func (d *District) Clone() *District {
	out := &District{Coord: d.Coord, Name: d.Name}
	out.Amenities = make([]Amenity, len(d.Amenities))
	for i, a := range d.Amenities {
		out.Amenities[i] = a
		if a.Age != nil {
			age := *a.Age
			out.Amenities[i].Age = &age
		}
	}
	if len(d.Assets) > 0 {
		out.Assets = append([]Asset(nil), d.Assets...)
	}
	return out
}
