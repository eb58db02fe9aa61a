// Package catalog holds the immutable reference data: attributes, citizens,
// amenity categories and the construction action catalog.
package catalog

import (
	"fmt"
	"strings"
)

// Attribute is a thematic tag carried by citizen cards.
type Attribute uint8

const (
	AttrNone Attribute = iota
	AttrAir
	AttrAnimals
	AttrArt
	AttrBooks
	AttrCommerce
	AttrDining
	AttrEducation
	AttrElectricity
	AttrExploration
	AttrFinance
	AttrFire
	AttrFood
	AttrGovernment
	AttrHealth
	AttrHistory
	AttrIndustry
	AttrLandmark
	AttrLaw
	AttrMathematics
	AttrMilitary
	AttrMusic
	AttrMysticism
	AttrNature
	AttrOffice
	AttrResidency
	AttrResources
	AttrRoad
	AttrRobotics
	AttrScience
	AttrSea
	AttrSpace
	AttrSport
	AttrTechnology
	AttrTheatre
	AttrThrill
	AttrTourism
	AttrTrain

	attrCount
)

var attributeNames = [attrCount]string{
	AttrNone:        "None",
	AttrAir:         "Air",
	AttrAnimals:     "Animals",
	AttrArt:         "Art",
	AttrBooks:       "Books",
	AttrCommerce:    "Commerce",
	AttrDining:      "Dining",
	AttrEducation:   "Education",
	AttrElectricity: "Electricity",
	AttrExploration: "Exploration",
	AttrFinance:     "Finance",
	AttrFire:        "Fire",
	AttrFood:        "Food",
	AttrGovernment:  "Government",
	AttrHealth:      "Health",
	AttrHistory:     "History",
	AttrIndustry:    "Industry",
	AttrLandmark:    "Landmark",
	AttrLaw:         "Law",
	AttrMathematics: "Mathematics",
	AttrMilitary:    "Military",
	AttrMusic:       "Music",
	AttrMysticism:   "Mysticism",
	AttrNature:      "Nature",
	AttrOffice:      "Office",
	AttrResidency:   "Residency",
	AttrResources:   "Resources",
	AttrRoad:        "Road",
	AttrRobotics:    "Robotics",
	AttrScience:     "Science",
	AttrSea:         "Sea",
	AttrSpace:       "Space",
	AttrSport:       "Sport",
	AttrTechnology:  "Technology",
	AttrTheatre:     "Theatre",
	AttrThrill:      "Thrill",
	AttrTourism:     "Tourism",
	AttrTrain:       "Train",
}

func (a Attribute) String() string {
	if a < attrCount {
		return attributeNames[a]
	}
	return "Unknown"
}

// Attributes returns every playable attribute in declaration order.
func Attributes() []Attribute {
	out := make([]Attribute, 0, attrCount-1)
	for a := AttrNone + 1; a < attrCount; a++ {
		out = append(out, a)
	}
	return out
}

// ParseAttribute resolves a name such as "residency" or "Residency".
func ParseAttribute(s string) (Attribute, error) {
	key := normalizeName(s)
	for a := AttrNone + 1; a < attrCount; a++ {
		if normalizeName(attributeNames[a]) == key {
			return a, nil
		}
	}
	return AttrNone, fmt.Errorf("unknown attribute %q", s)
}

func (a Attribute) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Attribute) UnmarshalText(b []byte) error {
	v, err := ParseAttribute(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// normalizeName folds case and drops spaces, dashes and underscores so that
// "Wood Warehouse", "wood_warehouse" and "woodwarehouse" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
