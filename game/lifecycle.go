package game

import (
	"log/slog"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/field"
	"github.com/pthm-cable/mobsim/systems"
)

// Populate fills an empty field cell by cell. Each cell draws once against
// the cumulative creation probabilities, in species table order followed by
// grass; a draw above the total leaves the cell empty. Grass is seeded in
// clusters onto free neighbouring cells.
func (s *Simulator) Populate() {
	f := s.field
	for row := 0; row < f.Depth(); row++ {
		for col := 0; col < f.Width(); col++ {
			loc := components.Loc(row, col)
			species, grass := s.pickCellContent()
			switch {
			case species != components.SpeciesNone:
				d := s.species.Get(species)
				e := s.arena.NewMob(d.NewMob(s.rng, loc, true))
				if !f.Place(e, loc) {
					s.arena.Destroy(e)
				}
			case grass:
				if _, taken := f.PlantAt(loc); !taken {
					systems.SeedCluster(f, s.rng, loc, s.cfg.Flora.ClusterMax)
				}
			}
		}
	}

	slog.Info("world populated",
		"seed", s.seed,
		"depth", f.Depth(),
		"width", f.Width(),
		"free_cells", len(f.FreeLocations()),
		"population", f.PopulationDetails().String(),
	)
}

// pickCellContent draws the content of one cell.
func (s *Simulator) pickCellContent() (components.Species, bool) {
	p := s.rng.Float64()
	cumulative := 0.0
	for _, species := range components.AnimalSpecies {
		cumulative += s.species.Get(species).CreationProbability
		if p <= cumulative {
			return species, false
		}
	}
	cumulative += s.cfg.Flora.CreationProbability
	return components.SpeciesNone, p <= cumulative
}

// Reset discards every entity, restores the initial environment, rewinds the
// step counter and repopulates.
func (s *Simulator) Reset() {
	for _, e := range s.field.Mobs() {
		s.arena.Destroy(e)
	}
	for _, e := range s.field.Plants() {
		s.arena.Destroy(e)
	}
	s.field.Clear()

	s.step = 0
	s.env = components.Environment{}
	s.field.SetEnvironment(s.env)
	s.policy = systems.NewBreedingPolicy(s.species, s.cfg.Behavior.ThrottleFactor)
	s.spawner.Reset()
	s.collector.Reset()
	s.bookmarkDetector.Reset()

	s.Populate()
}

// swap replaces the current generation with next and prunes the dead.
// Entities of the old generation that never made it into next either died
// this step or lost their target cell to an earlier mover; the latter are
// recorded as displaced. Both are removed from the arena.
func (s *Simulator) swap(next *field.Field) {
	old := s.field
	s.field = next

	for _, e := range old.Mobs() {
		if next.Contains(e) {
			continue
		}
		if m := s.arena.Mob(e); m != nil && m.Alive {
			m.SetDead()
			s.collector.RecordDeath(m.Species, systems.DeathDisplaced)
		}
		s.arena.Destroy(e)
	}
	for _, e := range old.Plants() {
		if !next.Contains(e) {
			s.arena.Destroy(e)
		}
	}

	deadMobs, deadPlants := next.PruneDead()
	for _, e := range deadMobs {
		s.arena.Destroy(e)
	}
	for _, e := range deadPlants {
		s.arena.Destroy(e)
	}
}
