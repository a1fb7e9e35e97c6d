package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mobsim/components"
)

// Act runs one step of the action pipeline for a mob:
//
//  1. age, dying at max age
//  2. hunger, dying when the food level reaches zero
//  3. disease roll and spread
//  4. free cells around the mob in the next generation
//  5. breeding attempt; prey need a free cell to try, predators draw
//     even when the litter has nowhere to go
//  6. foraging or hunting in the current generation
//  7. dispersal move when no food target was found
//  8. registration in the next generation, or stationary starvation in place
//
// Dead mobs are skipped. Pointers into the arena are re-read after any step
// that creates entities.
func Act(s *Step, e ecs.Entity) {
	arena := s.arena()
	m := arena.Mob(e)
	if m == nil || !m.Alive {
		return
	}
	d := s.Species.Get(m.Species)
	if d == nil {
		return
	}

	m.Age++
	if m.Age >= d.MaxAge {
		s.kill(m, DeathAge)
		return
	}

	m.Food--
	if m.Food <= 0 {
		s.kill(m, DeathStarvation)
		return
	}

	TryToInfect(s, e)
	if !m.Alive {
		return
	}

	here := m.Loc
	free := s.Next.FreeAdjacentLocations(here)

	room := len(free) > 0 || !d.NeedsRoomToBreed
	if room && m.Age >= d.BreedingAge && d.BreedGate(s, e, m, d) &&
		s.Policy.CanBreed(d.Species, s.Rand) {
		free = giveBirth(s, m, d, free)
		m = arena.Mob(e)
	}

	var target components.Location
	found := false
	if d.ForageGate(s, m, d) {
		target, found = d.Forage(s, e, d)
	}
	if !found && len(free) > 0 {
		target, found = FindBestMove(s, here, free)
	}

	if found {
		m.SetLocation(target)
		s.Next.Place(e, target)
		return
	}

	// Immobile this step. A survivor keeps its cell unless a mover already
	// claimed it in the next generation.
	m.Food = int(float64(m.Food) - float64(d.HungerLimit)*s.Behavior.StationaryDecay)
	if m.Food <= 0 {
		s.kill(m, DeathStarvation)
		return
	}
	s.Next.Place(e, here)
}

// giveBirth places a litter into successive free cells once a mate is found
// next to the parent. Returns the free cells left over.
func giveBirth(s *Step, parent *components.Mob, d *Descriptor, free []components.Location) []components.Location {
	if !d.FindMate(s, parent.Loc, parent) {
		return free
	}

	births := s.Rand.Intn(d.MaxLitterSize) + 1
	for b := 0; b < births && len(free) > 0; b++ {
		loc := free[0]
		free = free[1:]
		young := d.NewMob(s.Rand, loc, false)
		if _, ok := s.spawn(young); ok {
			s.recorder().RecordBirth(d.Species)
		}
	}
	return free
}

// preyBreedGate requires the food level above the prey breeding fraction.
func preyBreedGate(s *Step, _ ecs.Entity, m *components.Mob, d *Descriptor) bool {
	return float64(m.Food) > float64(d.HungerLimit)*s.Behavior.PreyBreedHunger
}

// predatorBreedGate requires the food level above the predator breeding
// fraction and fewer same-species neighbours than the crowding cap.
func predatorBreedGate(s *Step, _ ecs.Entity, m *components.Mob, d *Descriptor) bool {
	if float64(m.Food) <= float64(d.HungerLimit)*s.Behavior.PredatorBreedHunger {
		return false
	}
	return s.Current.CountNearbyMobs(m.Loc, d.Species) < s.Behavior.PredatorCrowdingCap
}

// oppositeGenderMate looks for a living same-species mob of the other gender
// adjacent to loc in the next generation.
func oppositeGenderMate(s *Step, loc components.Location, m *components.Mob) bool {
	return findMate(s, loc, m, true)
}

// anyMate looks for any living same-species mob adjacent to loc in the next
// generation.
func anyMate(s *Step, loc components.Location, m *components.Mob) bool {
	return findMate(s, loc, m, false)
}

func findMate(s *Step, loc components.Location, m *components.Mob, oppositeGender bool) bool {
	arena := s.arena()
	for _, adj := range s.Next.AdjacentLocations(loc) {
		other, ok := s.Next.MobAt(adj)
		if !ok {
			continue
		}
		partner := arena.Mob(other)
		if partner == nil || !partner.Alive || partner.Species != m.Species {
			continue
		}
		if oppositeGender && partner.Gender == m.Gender {
			continue
		}
		return true
	}
	return false
}

// grazeGate lets prey forage below the prey forage fraction.
func grazeGate(s *Step, m *components.Mob, d *Descriptor) bool {
	return float64(m.Food) < float64(d.HungerLimit)*s.Behavior.PreyForageHunger
}

// huntGate lets predators hunt below the predator hunt fraction.
func huntGate(s *Step, m *components.Mob, d *Descriptor) bool {
	return float64(m.Food) < float64(d.HungerLimit)*s.Behavior.PredatorHuntHunger
}

// graze eats the first grown grass found on the four orthogonal neighbours
// and targets its cell.
func graze(s *Step, e ecs.Entity, d *Descriptor) (components.Location, bool) {
	arena := s.arena()
	m := arena.Mob(e)
	if m.Food >= d.HungerLimit {
		return components.Location{}, false
	}
	for _, loc := range s.Current.OrthogonalLocations(m.Loc) {
		pe, ok := s.Current.PlantAt(loc)
		if !ok {
			continue
		}
		grass := arena.Plant(pe)
		if grass == nil || !grass.Alive || grass.Seed {
			continue
		}
		grass.Seed = true
		m.Food = min(m.Food+s.Flora.FoodValue, d.HungerLimit)
		s.recorder().RecordForage(d.Species)
		return loc, true
	}
	return components.Location{}, false
}

// hunt kills the first living prey found in the hunt radius, scanning the
// current generation row by row, and targets its cell.
func hunt(s *Step, e ecs.Entity, d *Descriptor) (components.Location, bool) {
	m := s.arena().Mob(e)
	for _, loc := range s.Current.NearbyLocations(m.Loc, s.Behavior.HuntRadius) {
		if eatPreyAt(s, m, d, loc) {
			return loc, true
		}
	}
	return components.Location{}, false
}

// rainHunt kills every adjacent prey when it rains, without moving onto any
// of them, then hunts as usual.
func rainHunt(s *Step, e ecs.Entity, d *Descriptor) (components.Location, bool) {
	m := s.arena().Mob(e)
	if s.Current.Weather() == components.Rainy {
		for _, loc := range s.Current.AdjacentLocations(m.Loc) {
			eatPreyAt(s, m, d, loc)
		}
	}
	return hunt(s, e, d)
}

// eatPreyAt kills a living prey at loc in the current generation and feeds
// the predator. Reports whether prey was eaten.
func eatPreyAt(s *Step, m *components.Mob, d *Descriptor, loc components.Location) bool {
	other, ok := s.Current.MobAt(loc)
	if !ok {
		return false
	}
	prey := s.arena().Mob(other)
	if prey == nil || !prey.Alive || prey.Species.Kind() != components.KindPrey {
		return false
	}
	s.kill(prey, DeathEaten)
	s.recorder().RecordKill(d.Species, prey.Species)

	gain := 0
	if pd := s.Species.Get(prey.Species); pd != nil {
		gain = pd.FoodValue
	}
	m.Food = min(m.Food+gain, d.HungerLimit)
	if d.OnKill != nil {
		d.OnKill(s, d)
	}
	return true
}
