package components

// PlantType identifies a plant variety.
type PlantType uint8

const (
	PlantGrass PlantType = iota
)

// String returns the display name of the plant type.
func (p PlantType) String() string {
	return "Grass"
}

// Plant is passable ground cover. Seed plants cannot be eaten; grown plants
// revert to seed when consumed.
type Plant struct {
	Type  PlantType
	Alive bool
	Seed  bool
	Loc   Location
}
