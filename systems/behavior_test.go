package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mobsim/components"
)

func TestActDeathByAge(t *testing.T) {
	s, rec := newTestStep(t, 7, 7, 1)
	d := s.Species.Get(components.SpeciesCow)
	e := putMob(t, s, components.SpeciesCow, components.Loc(3, 3), d.MaxAge-1, 50, components.Female)

	Act(s, e)

	m := s.arena().Mob(e)
	if m.Alive || m.HasLoc {
		t.Errorf("mob alive=%v hasLoc=%v, want dead without location", m.Alive, m.HasLoc)
	}
	if rec.deaths[DeathAge] != 1 {
		t.Errorf("age deaths = %d, want 1", rec.deaths[DeathAge])
	}
	if s.Next.Contains(e) {
		t.Error("dead mob registered in the next generation")
	}
}

func TestActStarvation(t *testing.T) {
	tests := []struct {
		name    string
		species components.Species
		food    int
	}{
		{"lone prey at zero", components.SpeciesCow, 0},
		{"prey with one left", components.SpeciesPig, 1},
		{"predator with one left", components.SpeciesZombie, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newTestStep(t, 7, 7, 1)
			e := putMob(t, s, tt.species, components.Loc(3, 3), 1, tt.food, components.Female)

			Act(s, e)

			if s.arena().Mob(e).Alive {
				t.Error("mob survived with no food")
			}
			if rec.deaths[DeathStarvation] != 1 {
				t.Errorf("starvation deaths = %d, want 1", rec.deaths[DeathStarvation])
			}
		})
	}
}

func TestActDeadMobIsSkipped(t *testing.T) {
	s, rec := newTestStep(t, 7, 7, 1)
	e := putMob(t, s, components.SpeciesCow, components.Loc(3, 3), 1, 50, components.Female)
	s.arena().Mob(e).SetDead()

	Act(s, e)

	if s.arena().Mob(e).Age != 1 {
		t.Error("dead mob aged")
	}
	if len(rec.deaths) != 0 || s.Next.Contains(e) {
		t.Error("dead mob acted")
	}
}

func TestActMovesIntoNextGeneration(t *testing.T) {
	s, _ := newTestStep(t, 7, 7, 1)
	here := components.Loc(3, 3)
	e := putMob(t, s, components.SpeciesCow, here, 1, 70, components.Female)

	Act(s, e)

	m := s.arena().Mob(e)
	if !m.Alive {
		t.Fatal("well-fed cow died")
	}
	if m.Loc == here || m.Loc.Manhattan(here) > 2 {
		t.Errorf("cow moved to %v, want an adjacent cell", m.Loc)
	}
	if got, ok := s.Next.MobAt(m.Loc); !ok || got != e {
		t.Error("cow not registered at its new cell")
	}
	if _, ok := s.Current.MobAt(here); !ok {
		t.Error("current generation was mutated")
	}
	if m.Age != 2 || m.Food != 69 {
		t.Errorf("age=%d food=%d, want 2 and 69", m.Age, m.Food)
	}
}

func TestWellFedPredatorDoesNotHunt(t *testing.T) {
	s, rec := newTestStep(t, 7, 7, 1)
	zombie := putMob(t, s, components.SpeciesZombie, components.Loc(3, 3), 1, 200, components.Male)
	cow := putMob(t, s, components.SpeciesCow, components.Loc(3, 4), 1, 70, components.Female)

	Act(s, zombie)

	if !s.arena().Mob(cow).Alive {
		t.Error("well-fed predator ate prey")
	}
	if rec.kills != 0 {
		t.Errorf("kills = %d, want 0", rec.kills)
	}
	if !s.Next.Contains(zombie) {
		t.Error("predator not registered in the next generation")
	}
}

func TestHungryPredatorEatsPrey(t *testing.T) {
	for _, tod := range []components.TimeOfDay{components.Day, components.Night} {
		t.Run(tod.String(), func(t *testing.T) {
			s, rec := newTestStep(t, 7, 7, 1)
			setEnvironment(s, components.Environment{Time: tod})
			zombie := putMob(t, s, components.SpeciesZombie, components.Loc(3, 3), 1, 10, components.Male)
			cow := putMob(t, s, components.SpeciesCow, components.Loc(3, 5), 1, 70, components.Female)

			Act(s, zombie)

			if s.arena().Mob(cow).Alive {
				t.Fatal("prey in hunt radius survived")
			}
			if rec.kills != 1 || rec.deaths[DeathEaten] != 1 {
				t.Errorf("kills=%d eaten=%d, want 1 and 1", rec.kills, rec.deaths[DeathEaten])
			}
			z := s.arena().Mob(zombie)
			if z.Loc != components.Loc(3, 5) {
				t.Errorf("predator at %v, want the prey's cell", z.Loc)
			}
			if z.Food != 9+s.Species.Get(components.SpeciesCow).FoodValue {
				t.Errorf("predator food = %d", z.Food)
			}

			wantPending := 0
			if tod == components.Night {
				wantPending = 1
			}
			if got := s.Spawner.Pending(components.SpeciesZombie); got != wantPending {
				t.Errorf("pending spawns = %d, want %d", got, wantPending)
			}
		})
	}
}

func TestPredatorFoodIsCapped(t *testing.T) {
	s, _ := newTestStep(t, 7, 7, 1)
	d := s.Species.Get(components.SpeciesZombie)
	food := int(float64(d.HungerLimit)*s.Behavior.PredatorHuntHunger) - 1
	zombie := putMob(t, s, components.SpeciesZombie, components.Loc(3, 3), 1, food, components.Male)
	putMob(t, s, components.SpeciesCow, components.Loc(2, 3), 1, 70, components.Female)
	putMob(t, s, components.SpeciesCow, components.Loc(4, 3), 1, 70, components.Female)
	putMob(t, s, components.SpeciesCow, components.Loc(3, 2), 1, 70, components.Female)

	Act(s, zombie)

	if got := s.arena().Mob(zombie).Food; got > d.HungerLimit {
		t.Errorf("food %d exceeds hunger limit %d", got, d.HungerLimit)
	}
}

func TestRainHunt(t *testing.T) {
	tests := []struct {
		name      string
		weather   components.Weather
		wantKills int
		wantLoc   components.Location
	}{
		// Rain wipes out the three neighbours, then the hunt takes the far pig.
		{"rainy", components.Rainy, 4, components.Loc(0, 3)},
		// Without rain only the first prey in row-major order is eaten.
		{"clear", components.Clear, 1, components.Loc(0, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newTestStep(t, 7, 7, 1)
			setEnvironment(s, components.Environment{Weather: tt.weather})
			creeper := putMob(t, s, components.SpeciesCreeper, components.Loc(3, 3), 1, 10, components.Male)
			neighbours := []components.Location{components.Loc(2, 2), components.Loc(2, 4), components.Loc(4, 3)}
			for _, loc := range neighbours {
				putMob(t, s, components.SpeciesCow, loc, 1, 70, components.Female)
			}
			putMob(t, s, components.SpeciesPig, components.Loc(0, 3), 1, 70, components.Female)

			Act(s, creeper)

			if rec.kills != tt.wantKills {
				t.Errorf("kills = %d, want %d", rec.kills, tt.wantKills)
			}
			if got := s.arena().Mob(creeper).Loc; got != tt.wantLoc {
				t.Errorf("creeper at %v, want %v", got, tt.wantLoc)
			}
			for _, loc := range neighbours {
				e, _ := s.Current.MobAt(loc)
				alive := s.arena().Mob(e).Alive
				if tt.weather == components.Rainy && alive {
					t.Errorf("neighbour at %v survived the rain", loc)
				}
				if tt.weather != components.Rainy && !alive {
					t.Errorf("neighbour at %v eaten in clear weather", loc)
				}
			}
		})
	}
}

func TestPredatorsDoNotEatPredators(t *testing.T) {
	s, rec := newTestStep(t, 7, 7, 1)
	setEnvironment(s, components.Environment{Weather: components.Rainy})
	creeper := putMob(t, s, components.SpeciesCreeper, components.Loc(3, 3), 1, 10, components.Male)
	zombie := putMob(t, s, components.SpeciesZombie, components.Loc(3, 4), 1, 100, components.Male)

	Act(s, creeper)

	if !s.arena().Mob(zombie).Alive || rec.kills != 0 {
		t.Error("predator was eaten")
	}
}

func TestGraze(t *testing.T) {
	tests := []struct {
		name      string
		grassLoc  components.Location
		seed      bool
		wantEaten bool
	}{
		{"orthogonal grown grass", components.Loc(3, 4), false, true},
		{"diagonal grass is ignored", components.Loc(2, 2), false, false},
		{"seeded grass is not food", components.Loc(2, 3), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newTestStep(t, 7, 7, 1)
			cow := putMob(t, s, components.SpeciesCow, components.Loc(3, 3), 1, 20, components.Female)
			grass := putGrass(t, s, tt.grassLoc, tt.seed)

			Act(s, cow)

			m := s.arena().Mob(cow)
			p := s.arena().Plant(grass)
			if tt.wantEaten {
				if !p.Seed {
					t.Error("eaten grass did not revert to seed")
				}
				if m.Loc != tt.grassLoc {
					t.Errorf("cow at %v, want %v", m.Loc, tt.grassLoc)
				}
				if m.Food != 19+s.Flora.FoodValue {
					t.Errorf("food = %d, want %d", m.Food, 19+s.Flora.FoodValue)
				}
				if rec.forages != 1 {
					t.Errorf("forages = %d, want 1", rec.forages)
				}
				return
			}
			if p.Seed != tt.seed {
				t.Error("grass state changed")
			}
			if rec.forages != 0 {
				t.Errorf("forages = %d, want 0", rec.forages)
			}
			if !p.Alive {
				t.Error("grass died")
			}
		})
	}
}

func TestPreyBreeding(t *testing.T) {
	tests := []struct {
		name         string
		fatherGender components.Gender
		wantBirths   bool
	}{
		{"opposite gender", components.Male, true},
		{"same gender", components.Female, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newTestStep(t, 7, 7, 3)
			d := s.Species.Get(components.SpeciesCow)
			mother := putMob(t, s, components.SpeciesCow, components.Loc(3, 3), 10, d.HungerLimit, components.Female)
			father := putMob(t, s, components.SpeciesCow, components.Loc(3, 4), 10, d.HungerLimit, tt.fatherGender)
			// The partner has already acted and sits in the next generation.
			s.Next.Place(father, components.Loc(3, 4))
			alwaysBreed(s, components.SpeciesCow)

			Act(s, mother)

			births := rec.births[components.SpeciesCow]
			if !tt.wantBirths {
				if births != 0 {
					t.Errorf("births = %d, want 0", births)
				}
				return
			}
			if births < 1 || births > d.MaxLitterSize {
				t.Fatalf("births = %d, want 1..%d", births, d.MaxLitterSize)
			}
			if got := s.Next.Population(components.SpeciesCow); got != births+2 {
				t.Errorf("cows in next generation = %d, want %d", got, births+2)
			}
			newborns := 0
			for _, e := range s.Next.Mobs() {
				m := s.arena().Mob(e)
				if e == mother || e == father {
					continue
				}
				newborns++
				if m.Age != 0 {
					t.Errorf("newborn age = %d", m.Age)
				}
				if m.Loc.Manhattan(components.Loc(3, 3)) > 2 {
					t.Errorf("newborn at %v is not next to its parent", m.Loc)
				}
			}
			if newborns != births {
				t.Errorf("newborns = %d, recorded births = %d", newborns, births)
			}
		})
	}
}

func TestPredatorBreedingIgnoresGender(t *testing.T) {
	s, rec := newTestStep(t, 7, 7, 5)
	d := s.Species.Get(components.SpeciesZombie)
	a := putMob(t, s, components.SpeciesZombie, components.Loc(3, 3), d.BreedingAge, 250, components.Male)
	b := putMob(t, s, components.SpeciesZombie, components.Loc(3, 4), d.BreedingAge, 250, components.Male)
	s.Next.Place(b, components.Loc(3, 4))
	alwaysBreed(s, components.SpeciesZombie)

	Act(s, a)

	if births := rec.births[components.SpeciesZombie]; births < 1 || births > d.MaxLitterSize {
		t.Errorf("births = %d, want 1..%d", births, d.MaxLitterSize)
	}
}

func TestPredatorCrowdingBlocksBreeding(t *testing.T) {
	s, rec := newTestStep(t, 7, 7, 5)
	d := s.Species.Get(components.SpeciesZombie)
	a := putMob(t, s, components.SpeciesZombie, components.Loc(3, 3), d.BreedingAge, 250, components.Male)
	crowd := []components.Location{
		components.Loc(2, 2), components.Loc(2, 3), components.Loc(2, 4), components.Loc(3, 4),
	}
	for _, loc := range crowd {
		e := putMob(t, s, components.SpeciesZombie, loc, d.BreedingAge, 250, components.Female)
		s.Next.Place(e, loc)
	}
	alwaysBreed(s, components.SpeciesZombie)

	Act(s, a)

	if births := rec.births[components.SpeciesZombie]; births != 0 {
		t.Errorf("births = %d with %d neighbours, want 0", births, len(crowd))
	}
}

func TestImmobileMobDecaysInPlace(t *testing.T) {
	s, _ := newTestStep(t, 3, 3, 1)
	d := s.Species.Get(components.SpeciesCow)
	centre := components.Loc(1, 1)
	cow := putMob(t, s, components.SpeciesCow, centre, 1, 50, components.Female)
	// Every neighbouring cell is already taken in the next generation.
	for _, loc := range s.Current.AdjacentLocations(centre) {
		e := putMob(t, s, components.SpeciesPig, loc, 1, 70, components.Female)
		s.Next.Place(e, loc)
	}

	Act(s, cow)

	m := s.arena().Mob(cow)
	want := 49 - int(float64(d.HungerLimit)*s.Behavior.StationaryDecay)
	if m.Food != want {
		t.Errorf("food = %d, want %d", m.Food, want)
	}
	if got, ok := s.Next.MobAt(centre); !ok || got != cow {
		t.Error("immobile cow did not keep its cell")
	}
}

func TestImmobileMobStarves(t *testing.T) {
	s, rec := newTestStep(t, 3, 3, 1)
	centre := components.Loc(1, 1)
	// Hungry enough to forage but with no grass, and too weak to survive the decay.
	cow := putMob(t, s, components.SpeciesCow, centre, 1, 4, components.Female)
	for _, loc := range s.Current.AdjacentLocations(centre) {
		e := putMob(t, s, components.SpeciesPig, loc, 1, 70, components.Female)
		s.Next.Place(e, loc)
	}

	Act(s, cow)

	if s.arena().Mob(cow).Alive {
		t.Error("starving immobile cow survived")
	}
	if rec.deaths[DeathStarvation] != 1 {
		t.Errorf("starvation deaths = %d, want 1", rec.deaths[DeathStarvation])
	}
}

// A partner only counts once it has been registered in the next generation,
// so whether a pair can breed depends on registry order.
func TestMateSearchReadsNextGeneration(t *testing.T) {
	for _, species := range []components.Species{components.SpeciesCow, components.SpeciesZombie} {
		t.Run(species.String()+" partner only in current", func(t *testing.T) {
			s, rec := newTestStep(t, 7, 7, 3)
			d := s.Species.Get(species)
			parent := putMob(t, s, species, components.Loc(3, 3), d.BreedingAge, d.HungerLimit, components.Female)
			putMob(t, s, species, components.Loc(3, 4), d.BreedingAge, d.HungerLimit, components.Male)
			alwaysBreed(s, species)

			Act(s, parent)

			if got := rec.births[species]; got != 0 {
				t.Errorf("births = %d, want 0 with the partner not yet in the next generation", got)
			}
		})

		t.Run(species.String()+" partner later in registry", func(t *testing.T) {
			s, rec := newTestStep(t, 7, 7, 3)
			d := s.Species.Get(species)
			parent := putMob(t, s, species, components.Loc(3, 3), d.BreedingAge, d.HungerLimit, components.Female)
			partner := putMob(t, s, species, components.Loc(3, 4), d.BreedingAge, d.HungerLimit, components.Male)
			alwaysBreed(s, species)

			order := s.Current.Mobs()
			if len(order) != 2 || order[0] != parent || order[1] != partner {
				t.Fatalf("registry order = %v, want parent then partner", order)
			}
			for _, e := range order {
				Act(s, e)
				if e == parent && rec.births[species] != 0 {
					t.Fatalf("parent bred before its partner acted: births = %d", rec.births[species])
				}
			}
		})
	}
}

// surrounded places a breeding-age parent in the centre of a 3x3 grid with
// one opposite-gender partner and seven mobs of another species around it,
// all registered in both generations, so no cell is free.
func surrounded(t *testing.T, seed int64, species, filler components.Species, base float64) (*Step, *countingRecorder, ecs.Entity) {
	t.Helper()
	s, rec := newTestStep(t, 3, 3, seed)
	d := s.Species.Get(species)
	fd := s.Species.Get(filler)

	centre := components.Loc(1, 1)
	parent := putMob(t, s, species, centre, d.BreedingAge, d.HungerLimit, components.Female)
	s.Next.Place(parent, centre)
	first := true
	for _, loc := range s.Current.AdjacentLocations(centre) {
		var e ecs.Entity
		if first {
			e = putMob(t, s, species, loc, d.BreedingAge, d.HungerLimit, components.Male)
			first = false
		} else {
			e = putMob(t, s, filler, loc, 0, fd.HungerLimit, components.Male)
		}
		s.Next.Place(e, loc)
	}
	s.Policy.SetLimits(species, 1<<30, 1<<30, base)
	s.Policy.Refresh(s.Current)
	return s, rec, parent
}

func TestBreedingDrawsWithoutFreeCells(t *testing.T) {
	tests := []struct {
		name      string
		species   components.Species
		filler    components.Species
		wantDraws bool
	}{
		{"predator draws", components.SpeciesZombie, components.SpeciesCow, true},
		{"prey skips", components.SpeciesCow, components.SpeciesPig, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, rec, parent := surrounded(t, 11, tt.species, tt.filler, 1)
			closed, _, closedParent := surrounded(t, 11, tt.species, tt.filler, 0)

			if got := len(open.Next.FreeAdjacentLocations(components.Loc(1, 1))); got != 0 {
				t.Fatalf("%d free cells around the parent, want 0", got)
			}

			Act(open, parent)
			Act(closed, closedParent)

			if got := rec.births[tt.species]; got != 0 {
				t.Errorf("births = %d, want 0 with nowhere to place them", got)
			}
			// A zero breeding probability never draws, so the two streams
			// stay aligned exactly when the open policy did not draw either.
			drew := open.Rand.Int63() != closed.Rand.Int63()
			if drew != tt.wantDraws {
				t.Errorf("breeding attempt consumed draws = %v, want %v", drew, tt.wantDraws)
			}
		})
	}
}
