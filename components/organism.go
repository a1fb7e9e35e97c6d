package components

// Mob holds the life-cycle state shared by every animal.
// Species constants live in the species descriptor table, not here.
type Mob struct {
	Species  Species
	Gender   Gender
	Alive    bool
	Age      int
	Food     int // current food level, bounded above by the species hunger limit
	Diseased bool

	// Loc is the cell the mob occupies (or is moving to) in the newest
	// generation. HasLoc is false once the mob is dead.
	Loc    Location
	HasLoc bool
}

// SetDead marks the mob dead and clears its location. One-way.
func (m *Mob) SetDead() {
	m.Alive = false
	m.HasLoc = false
}

// SetLocation records the mob's new cell.
func (m *Mob) SetLocation(loc Location) {
	m.Loc = loc
	m.HasLoc = true
}
