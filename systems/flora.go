package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/field"
)

// UpdateFlora carries every plant of the current generation forward into the
// next one, in registry order, and applies the growth rule to each.
func UpdateFlora(s *Step) {
	arena := s.arena()
	for _, e := range s.Current.Plants() {
		p := arena.Plant(e)
		if p == nil || !p.Alive {
			continue
		}
		if !s.Next.Contains(e) {
			s.Next.Place(e, p.Loc)
		}
		Grow(s, p)
	}
}

// Grow turns an eaten patch back into edible grass with the configured
// growth probability. Grown grass is left alone.
func Grow(s *Step, p *components.Plant) {
	if !p.Alive || !p.Seed {
		return
	}
	if s.Rand.Float64() < s.Flora.GrowthProbability {
		p.Seed = false
	}
}

// SeedCluster places a grass patch at loc plus up to clusterMax extra patches
// on free neighbouring cells of f's plant layer. Returns the entities placed.
func SeedCluster(f *field.Field, rng *rand.Rand, loc components.Location, clusterMax int) []ecs.Entity {
	arena := f.Arena()

	var placed []ecs.Entity
	plant := func(at components.Location) {
		e := arena.NewPlant(components.Plant{Type: components.PlantGrass, Alive: true, Loc: at})
		if !f.Place(e, at) {
			arena.Destroy(e)
			return
		}
		placed = append(placed, e)
	}

	plant(loc)
	if clusterMax <= 0 || len(placed) == 0 {
		return placed
	}
	extra := rng.Intn(clusterMax) + 1
	for _, adj := range f.AdjacentLocations(loc) {
		if extra == 0 {
			break
		}
		if _, taken := f.PlantAt(adj); taken {
			continue
		}
		if _, taken := f.MobAt(adj); taken {
			continue
		}
		plant(adj)
		extra--
	}
	return placed
}
