package catalog

import "fmt"

// CitizenCode identifies a citizen card.
type CitizenCode uint8

const (
	CitizenNone CitizenCode = iota
	Actor
	Architect
	Artist
	Astronaut
	Athlete
	Banker
	Captain
	Chef
	Cryptid
	Daredevil
	Doctor
	Driver
	Engineer
	Explorer
	FactoryWorker
	Farmer
	FireFighter
	Guru
	Historian
	HomeOwner
	Inventor
	Mathematician
	Mayor
	Miner
	Musician
	Mystic
	OfficeWorker
	Pilot
	PoliceOfficer
	Robot
	Scientist
	Shopkeeper
	Soldier
	Teacher
	Tourist
	Writer
	ZooKeeper

	citizenCount
)

// Citizen is an immutable citizen card definition.
type Citizen struct {
	Code       CitizenCode `json:"code"`
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

// Has reports whether the citizen carries the attribute.
func (c Citizen) Has(a Attribute) bool {
	for _, x := range c.Attributes {
		if x == a {
			return true
		}
	}
	return false
}

var citizens = [citizenCount]Citizen{
	Actor:         {Actor, "Actor", []Attribute{AttrTheatre, AttrRoad, AttrHealth, AttrExploration}},
	Architect:     {Architect, "Architect", []Attribute{AttrLandmark, AttrHistory, AttrArt, AttrElectricity}},
	Artist:        {Artist, "Artist", []Attribute{AttrArt, AttrTheatre, AttrCommerce, AttrNature}},
	Astronaut:     {Astronaut, "Astronaut", []Attribute{AttrSpace, AttrMilitary, AttrTrain, AttrTechnology}},
	Athlete:       {Athlete, "Athlete", []Attribute{AttrSport, AttrHealth, AttrNature, AttrFood}},
	Banker:        {Banker, "Banker", []Attribute{AttrFinance, AttrTrain, AttrLaw, AttrGovernment}},
	Captain:       {Captain, "Captain", []Attribute{AttrSea, AttrResources, AttrDining, AttrMathematics}},
	Chef:          {Chef, "Chef", []Attribute{AttrDining, AttrFood, AttrTourism, AttrFire}},
	Cryptid:       {Cryptid, "Cryptid", []Attribute{AttrMysticism, AttrThrill, AttrExploration, AttrMathematics}},
	Daredevil:     {Daredevil, "Dare Devil", []Attribute{AttrThrill, AttrTheatre, AttrLandmark, AttrSport}},
	Doctor:        {Doctor, "Doctor", []Attribute{AttrHealth, AttrResidency, AttrAir, AttrOffice}},
	Driver:        {Driver, "Driver", []Attribute{AttrRoad, AttrThrill, AttrMusic, AttrLaw}},
	Engineer:      {Engineer, "Engineer", []Attribute{AttrElectricity, AttrTechnology, AttrIndustry, AttrOffice}},
	Explorer:      {Explorer, "Explorer", []Attribute{AttrExploration, AttrHistory, AttrSea, AttrSpace}},
	FactoryWorker: {FactoryWorker, "Factory Worker", []Attribute{AttrIndustry, AttrResidency, AttrSpace, AttrRobotics}},
	Farmer:        {Farmer, "Farmer", []Attribute{AttrFood, AttrTrain, AttrAnimals, AttrExploration}},
	FireFighter:   {FireFighter, "Fire Fighter", []Attribute{AttrFire, AttrHealth, AttrIndustry, AttrCommerce}},
	Guru:          {Guru, "Guru", []Attribute{AttrMysticism, AttrEducation, AttrFinance, AttrMilitary}},
	Historian:     {Historian, "Historian", []Attribute{AttrHistory, AttrBooks, AttrTheatre, AttrScience}},
	HomeOwner:     {HomeOwner, "Home Owner", []Attribute{AttrResidency, AttrDining, AttrRoad, AttrFinance}},
	Inventor:      {Inventor, "Inventor", []Attribute{AttrTechnology, AttrScience, AttrSea, AttrGovernment}},
	Mathematician: {Mathematician, "Mathematician", []Attribute{AttrMathematics, AttrEducation, AttrRobotics, AttrTechnology}},
	Mayor:         {Mayor, "Mayor", []Attribute{AttrGovernment, AttrTourism, AttrResidency, AttrMilitary}},
	Miner:         {Miner, "Miner", []Attribute{AttrResources, AttrIndustry, AttrNature, AttrLandmark}},
	Musician:      {Musician, "Musician", []Attribute{AttrMusic, AttrArt, AttrAir, AttrEducation}},
	Mystic:        {Mystic, "Mystic", []Attribute{AttrMysticism, AttrElectricity, AttrFire, AttrAnimals}},
	OfficeWorker:  {OfficeWorker, "Office Worker", []Attribute{AttrOffice, AttrMusic, AttrTrain, AttrBooks}},
	Pilot:         {Pilot, "Pilot", []Attribute{AttrAir, AttrFire, AttrThrill, AttrResources}},
	PoliceOfficer: {PoliceOfficer, "Police Officer", []Attribute{AttrLaw, AttrCommerce, AttrAnimals, AttrSea}},
	Robot:         {Robot, "Robot", []Attribute{AttrRobotics, AttrScience, AttrDining, AttrElectricity}},
	Scientist:     {Scientist, "Scientist", []Attribute{AttrScience, AttrSpace, AttrSport, AttrMathematics}},
	Shopkeeper:    {Shopkeeper, "Shopkeeper", []Attribute{AttrCommerce, AttrMusic, AttrFood, AttrFinance}},
	Soldier:       {Soldier, "Soldier", []Attribute{AttrMilitary, AttrResources, AttrLaw, AttrRobotics}},
	Teacher:       {Teacher, "Teacher", []Attribute{AttrEducation, AttrBooks, AttrSport, AttrGovernment}},
	Tourist:       {Tourist, "Tourist", []Attribute{AttrTourism, AttrAir, AttrLandmark, AttrRoad}},
	Writer:        {Writer, "Writer", []Attribute{AttrBooks, AttrArt, AttrMysticism, AttrTourism}},
	ZooKeeper:     {ZooKeeper, "Zoo Keeper", []Attribute{AttrAnimals, AttrNature, AttrOffice, AttrHistory}},
}

// StartingCitizens is the pool a fresh game deals from.
var StartingCitizens = []CitizenCode{
	HomeOwner,
	Teacher,
	Farmer,
	OfficeWorker,
	FireFighter,
	Engineer,
	PoliceOfficer,
	Athlete,
	Doctor,
	Driver,
	Shopkeeper,
	Pilot,
}

// Lookup returns the definition for a citizen code.
func Lookup(code CitizenCode) (Citizen, bool) {
	if code == CitizenNone || code >= citizenCount {
		return Citizen{}, false
	}
	return citizens[code], true
}

// Citizens returns every citizen definition in code order.
func Citizens() []Citizen {
	out := make([]Citizen, 0, citizenCount-1)
	for c := CitizenNone + 1; c < citizenCount; c++ {
		out = append(out, citizens[c])
	}
	return out
}

func (c CitizenCode) String() string {
	if cit, ok := Lookup(c); ok {
		return cit.Name
	}
	return "Unknown"
}

// ParseCitizen resolves a citizen by display name ("Home Owner", "home_owner").
func ParseCitizen(s string) (CitizenCode, error) {
	key := normalizeName(s)
	for c := CitizenNone + 1; c < citizenCount; c++ {
		if normalizeName(citizens[c].Name) == key {
			return c, nil
		}
	}
	return CitizenNone, fmt.Errorf("unknown citizen %q", s)
}

func (c CitizenCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CitizenCode) UnmarshalText(b []byte) error {
	v, err := ParseCitizen(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
