package field

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/config"
)

// Field is one generation of the grid. A cell holds at most one mob and,
// independently, at most one plant. Registries keep insertion order; the
// simulator iterates them in that order.
type Field struct {
	depth, width int

	arena *Arena
	rng   *rand.Rand
	env   components.Environment

	mobGrid   []ecs.Entity
	plantGrid []ecs.Entity

	mobs   []ecs.Entity
	plants []ecs.Entity

	// where each registered entity sits in this generation
	index map[ecs.Entity]components.Location
}

// New creates an empty field. Non-positive dimensions are replaced by the
// defaults (config.DefaultDepth x config.DefaultWidth).
func New(depth, width int, arena *Arena, rng *rand.Rand) *Field {
	if depth <= 0 || width <= 0 {
		depth, width = config.DefaultDepth, config.DefaultWidth
	}
	return &Field{
		depth:     depth,
		width:     width,
		arena:     arena,
		rng:       rng,
		mobGrid:   make([]ecs.Entity, depth*width),
		plantGrid: make([]ecs.Entity, depth*width),
		index:     make(map[ecs.Entity]components.Location),
	}
}

// NextGeneration returns an empty field sharing dimensions, arena and random
// source, carrying the given environment.
func (f *Field) NextGeneration(env components.Environment) *Field {
	next := New(f.depth, f.width, f.arena, f.rng)
	next.env = env
	return next
}

// Depth returns the number of rows.
func (f *Field) Depth() int { return f.depth }

// Width returns the number of columns.
func (f *Field) Width() int { return f.width }

// Arena returns the entity storage backing this field.
func (f *Field) Arena() *Arena { return f.arena }

// Rand returns the run's random source.
func (f *Field) Rand() *rand.Rand { return f.rng }

// Environment returns the environment triple.
func (f *Field) Environment() components.Environment { return f.env }

// SetEnvironment replaces the environment triple.
func (f *Field) SetEnvironment(env components.Environment) { f.env = env }

// TimeOfDay returns the current day phase.
func (f *Field) TimeOfDay() components.TimeOfDay { return f.env.Time }

// Weather returns the current weather.
func (f *Field) Weather() components.Weather { return f.env.Weather }

// Season returns the current season.
func (f *Field) Season() components.Season { return f.env.Season }

// InBounds reports whether loc lies on the grid.
func (f *Field) InBounds(loc components.Location) bool {
	return loc.Row >= 0 && loc.Row < f.depth && loc.Col >= 0 && loc.Col < f.width
}

func (f *Field) cell(loc components.Location) int {
	return loc.Row*f.width + loc.Col
}

// MobAt returns the mob registered at loc.
func (f *Field) MobAt(loc components.Location) (ecs.Entity, bool) {
	if !f.InBounds(loc) {
		return ecs.Entity{}, false
	}
	e := f.mobGrid[f.cell(loc)]
	return e, !e.IsZero()
}

// PlantAt returns the plant registered at loc.
func (f *Field) PlantAt(loc components.Location) (ecs.Entity, bool) {
	if !f.InBounds(loc) {
		return ecs.Entity{}, false
	}
	e := f.plantGrid[f.cell(loc)]
	return e, !e.IsZero()
}

// ObjectAt returns the occupant of loc: the mob if there is one, else the plant.
func (f *Field) ObjectAt(loc components.Location) (ecs.Entity, bool) {
	if e, ok := f.MobAt(loc); ok {
		return e, true
	}
	return f.PlantAt(loc)
}

// AdjacentLocations returns the in-bounds 8-neighbourhood of loc, freshly
// shuffled on every call.
func (f *Field) AdjacentLocations(loc components.Location) []components.Location {
	locs := make([]components.Location, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		row := loc.Row + dr
		if row < 0 || row >= f.depth {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			col := loc.Col + dc
			if col < 0 || col >= f.width || (dr == 0 && dc == 0) {
				continue
			}
			locs = append(locs, components.Location{Row: row, Col: col})
		}
	}
	f.rng.Shuffle(len(locs), func(i, j int) { locs[i], locs[j] = locs[j], locs[i] })
	return locs
}

// OrthogonalLocations returns the in-bounds 4-neighbourhood of loc
// (up, down, left, right), freshly shuffled on every call.
func (f *Field) OrthogonalLocations(loc components.Location) []components.Location {
	locs := make([]components.Location, 0, 4)
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		n := components.Location{Row: loc.Row + d[0], Col: loc.Col + d[1]}
		if f.InBounds(n) {
			locs = append(locs, n)
		}
	}
	f.rng.Shuffle(len(locs), func(i, j int) { locs[i], locs[j] = locs[j], locs[i] })
	return locs
}

// NearbyLocations returns every in-bounds cell within radius rows and columns
// of loc, excluding loc, in row-major order.
func (f *Field) NearbyLocations(loc components.Location, radius int) []components.Location {
	startRow := max(0, loc.Row-radius)
	endRow := min(f.depth-1, loc.Row+radius)
	startCol := max(0, loc.Col-radius)
	endCol := min(f.width-1, loc.Col+radius)

	var locs []components.Location
	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			if row != loc.Row || col != loc.Col {
				locs = append(locs, components.Location{Row: row, Col: col})
			}
		}
	}
	return locs
}

// FreeAdjacentLocations returns the adjacent cells holding no mob. Cells
// with only a plant count as free. Order follows AdjacentLocations.
func (f *Field) FreeAdjacentLocations(loc components.Location) []components.Location {
	adjacent := f.AdjacentLocations(loc)
	free := adjacent[:0]
	for _, next := range adjacent {
		if _, taken := f.MobAt(next); !taken {
			free = append(free, next)
		}
	}
	return free
}

// FreeLocations returns every cell holding no mob, row-major.
func (f *Field) FreeLocations() []components.Location {
	var free []components.Location
	for row := 0; row < f.depth; row++ {
		for col := 0; col < f.width; col++ {
			loc := components.Location{Row: row, Col: col}
			if _, taken := f.MobAt(loc); !taken {
				free = append(free, loc)
			}
		}
	}
	return free
}

// CountNearbyMobs counts living mobs of the species in the 8-neighbourhood.
func (f *Field) CountNearbyMobs(loc components.Location, species components.Species) int {
	count := 0
	for _, adj := range f.AdjacentLocations(loc) {
		e, ok := f.MobAt(adj)
		if !ok {
			continue
		}
		if m := f.arena.Mob(e); m != nil && m.Alive && m.Species == species {
			count++
		}
	}
	return count
}

// Place registers e at loc. Mobs and plants are placed on separate layers;
// the first writer of a layer cell wins and later placements are ignored.
// Placing an entity already registered in this field, out of bounds, or one
// the arena does not know is also ignored. Reports whether e was placed.
func (f *Field) Place(e ecs.Entity, loc components.Location) bool {
	if !f.InBounds(loc) {
		return false
	}
	if _, registered := f.index[e]; registered {
		return false
	}
	idx := f.cell(loc)
	switch {
	case f.arena.IsMob(e):
		if !f.mobGrid[idx].IsZero() {
			return false
		}
		f.mobGrid[idx] = e
		f.mobs = append(f.mobs, e)
	case f.arena.IsPlant(e):
		if !f.plantGrid[idx].IsZero() {
			return false
		}
		f.plantGrid[idx] = e
		f.plants = append(f.plants, e)
	default:
		return false
	}
	f.index[e] = loc
	return true
}

// Remove unregisters e. A removed mob is marked dead and loses its location;
// a removed plant is marked dead.
func (f *Field) Remove(e ecs.Entity) {
	loc, ok := f.index[e]
	if !ok {
		return
	}
	f.unindex(e, loc)
	f.mobs = deleteEntity(f.mobs, e)
	f.plants = deleteEntity(f.plants, e)
	if m := f.arena.Mob(e); m != nil {
		m.SetDead()
	} else if p := f.arena.Plant(e); p != nil {
		p.Alive = false
	}
}

func (f *Field) unindex(e ecs.Entity, loc components.Location) {
	idx := f.cell(loc)
	if f.mobGrid[idx] == e {
		f.mobGrid[idx] = ecs.Entity{}
	}
	if f.plantGrid[idx] == e {
		f.plantGrid[idx] = ecs.Entity{}
	}
	delete(f.index, e)
}

func deleteEntity(list []ecs.Entity, e ecs.Entity) []ecs.Entity {
	for i, x := range list {
		if x == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// PruneDead unregisters every dead mob and plant in one pass, preserving the
// order of the survivors. Returns the removed entities.
func (f *Field) PruneDead() (deadMobs, deadPlants []ecs.Entity) {
	kept := f.mobs[:0]
	for _, e := range f.mobs {
		m := f.arena.Mob(e)
		if m != nil && m.Alive {
			kept = append(kept, e)
			continue
		}
		if m != nil {
			m.SetDead()
		}
		f.unindex(e, f.index[e])
		deadMobs = append(deadMobs, e)
	}
	f.mobs = kept

	keptPlants := f.plants[:0]
	for _, e := range f.plants {
		p := f.arena.Plant(e)
		if p != nil && p.Alive {
			keptPlants = append(keptPlants, e)
			continue
		}
		f.unindex(e, f.index[e])
		deadPlants = append(deadPlants, e)
	}
	f.plants = keptPlants
	return deadMobs, deadPlants
}

// Contains reports whether e is registered in this generation.
func (f *Field) Contains(e ecs.Entity) bool {
	_, ok := f.index[e]
	return ok
}

// LocationOf returns where e is registered in this generation.
func (f *Field) LocationOf(e ecs.Entity) (components.Location, bool) {
	loc, ok := f.index[e]
	return loc, ok
}

// Mobs returns a copy of the mob registry in order.
func (f *Field) Mobs() []ecs.Entity {
	return append([]ecs.Entity(nil), f.mobs...)
}

// Plants returns a copy of the plant registry in order.
func (f *Field) Plants() []ecs.Entity {
	return append([]ecs.Entity(nil), f.plants...)
}

// Clear empties the grid and both registries. Entities stay in the arena.
func (f *Field) Clear() {
	clear(f.mobGrid)
	clear(f.plantGrid)
	f.mobs = f.mobs[:0]
	f.plants = f.plants[:0]
	clear(f.index)
}

// Population counts living mobs of the species.
func (f *Field) Population(species components.Species) int {
	count := 0
	for _, e := range f.mobs {
		if m := f.arena.Mob(e); m != nil && m.Alive && m.Species == species {
			count++
		}
	}
	return count
}

// GrassCount counts living plants.
func (f *Field) GrassCount() int {
	count := 0
	for _, e := range f.plants {
		if p := f.arena.Plant(e); p != nil && p.Alive {
			count++
		}
	}
	return count
}

// PopulationCount is one row of a population report.
type PopulationCount struct {
	Name  string
	Count int
}

// PopulationDetails is a population report in display order.
type PopulationDetails []PopulationCount

// String formats the report as "Creeper: 3 Zombie: 5 ...".
func (d PopulationDetails) String() string {
	var b strings.Builder
	for i, c := range d {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s: %d", c.Name, c.Count)
	}
	return b.String()
}

// PopulationDetails counts every recognised species and the living grass.
func (f *Field) PopulationDetails() PopulationDetails {
	counts := make(map[components.Species]int, len(components.AnimalSpecies))
	for _, e := range f.mobs {
		if m := f.arena.Mob(e); m != nil && m.Alive {
			counts[m.Species]++
		}
	}
	details := make(PopulationDetails, 0, len(components.AnimalSpecies)+1)
	for _, s := range components.AnimalSpecies {
		details = append(details, PopulationCount{Name: s.String(), Count: counts[s]})
	}
	details = append(details, PopulationCount{Name: components.PlantGrass.String(), Count: f.GrassCount()})
	return details
}

// Viable reports whether at least one living individual of a recognised
// animal species remains.
func (f *Field) Viable() bool {
	for _, e := range f.mobs {
		m := f.arena.Mob(e)
		if m == nil || !m.Alive {
			continue
		}
		for _, s := range components.AnimalSpecies {
			if m.Species == s {
				return true
			}
		}
	}
	return false
}
