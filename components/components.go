// Package components defines ECS components for the simulation.
package components

// Kind separates the two behavioural families.
type Kind uint8

const (
	KindPrey Kind = iota
	KindPredator
)

// String returns the display name of the kind.
func (k Kind) String() string {
	if k == KindPredator {
		return "predator"
	}
	return "prey"
}

// Species is the explicit species tag carried by every mob.
type Species uint8

const (
	SpeciesNone Species = iota
	SpeciesCow
	SpeciesPig
	SpeciesVillager
	SpeciesZombie
	SpeciesCreeper
)

// AnimalSpecies lists the recognised animal species in table order.
var AnimalSpecies = []Species{SpeciesCreeper, SpeciesZombie, SpeciesCow, SpeciesPig, SpeciesVillager}

var speciesNames = [...]string{
	SpeciesNone:     "none",
	SpeciesCow:      "cow",
	SpeciesPig:      "pig",
	SpeciesVillager: "villager",
	SpeciesZombie:   "zombie",
	SpeciesCreeper:  "creeper",
}

// Key returns the lower-case configuration key for the species.
func (s Species) Key() string {
	if int(s) < len(speciesNames) {
		return speciesNames[s]
	}
	return "unknown"
}

var speciesDisplay = [...]string{
	SpeciesNone:     "None",
	SpeciesCow:      "Cow",
	SpeciesPig:      "Pig",
	SpeciesVillager: "Villager",
	SpeciesZombie:   "Zombie",
	SpeciesCreeper:  "Creeper",
}

// String returns the display name ("Cow", "Zombie", ...).
func (s Species) String() string {
	if int(s) < len(speciesDisplay) {
		return speciesDisplay[s]
	}
	return "Unknown"
}

// Kind reports whether the species hunts or forages.
func (s Species) Kind() Kind {
	switch s {
	case SpeciesZombie, SpeciesCreeper:
		return KindPredator
	default:
		return KindPrey
	}
}

// ParseSpecies maps a configuration key back to its tag.
func ParseSpecies(key string) (Species, bool) {
	for i, name := range speciesNames {
		if i > 0 && name == key {
			return Species(i), true
		}
	}
	return SpeciesNone, false
}

// Gender is fixed at creation.
type Gender uint8

const (
	Female Gender = iota
	Male
)

// String returns the display name of the gender.
func (g Gender) String() string {
	if g == Male {
		return "male"
	}
	return "female"
}
