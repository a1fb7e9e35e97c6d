package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mobsim/components"
)

// TryToInfect rolls the species disease rate for the mob (scaled in winter)
// and, if the mob is diseased, rolls the spread rate once for every healthy
// same-species neighbour in the current generation.
func TryToInfect(s *Step, e ecs.Entity) {
	arena := s.arena()
	m := arena.Mob(e)
	if m == nil || !m.Alive {
		return
	}
	d := s.Species.Get(m.Species)
	if d == nil {
		return
	}

	rate := d.DiseaseRate
	if s.Current.Season() == components.Winter {
		rate *= s.Environment.WinterDiseaseMultiplier
	}
	if s.Rand.Float64() < rate && !m.Diseased {
		Infect(s, m)
	}
	if !m.Diseased || !m.HasLoc {
		return
	}

	for _, loc := range s.Current.AdjacentLocations(m.Loc) {
		other, ok := s.Current.MobAt(loc)
		if !ok || other == e {
			continue
		}
		n := arena.Mob(other)
		if n == nil || !n.Alive || n.Species != m.Species || n.Diseased {
			continue
		}
		if s.Rand.Float64() < d.DiseaseSpreadRate {
			Infect(s, n)
		}
	}
}

// Infect marks the mob diseased. Infection is irreversible and ages the mob
// by its current age at once, which may kill it.
func Infect(s *Step, m *components.Mob) {
	if m.Diseased || !m.Alive {
		return
	}
	m.Diseased = true
	s.recorder().RecordInfection(m.Species)

	m.Age += m.Age
	if d := s.Species.Get(m.Species); d != nil && m.Age >= d.MaxAge {
		s.kill(m, DeathDisease)
	}
}
