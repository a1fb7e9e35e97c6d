package systems

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/config"
)

// Descriptor parameterises the shared action pipeline for one species:
// the species constants plus the hooks where species differ.
type Descriptor struct {
	Species components.Species
	Kind    components.Kind
	config.SpeciesConfig

	// NeedsRoomToBreed skips the breeding attempt, and its draws, when no
	// adjacent cell is free in the next generation.
	NeedsRoomToBreed bool
	// BreedGate reports whether hunger and crowding allow a breeding attempt.
	BreedGate func(s *Step, e ecs.Entity, m *components.Mob, d *Descriptor) bool
	// FindMate scans the next generation for a partner adjacent to loc.
	FindMate func(s *Step, loc components.Location, m *components.Mob) bool
	// ForageGate reports whether the mob is hungry enough to look for food.
	ForageGate func(s *Step, m *components.Mob, d *Descriptor) bool
	// Forage looks for food in the current generation and returns the cell
	// to move to.
	Forage func(s *Step, e ecs.Entity, d *Descriptor) (components.Location, bool)
	// OnKill runs after the mob has eaten prey.
	OnKill func(s *Step, d *Descriptor)
	// NewbornFood seeds the food level of a newborn or initial individual.
	NewbornFood func(rng *rand.Rand, d *Descriptor) int
	// StepHook is a species-wide action run once per step after all mobs acted.
	StepHook func(s *Step, d *Descriptor)
}

// SpeciesTable maps each species tag to its descriptor.
type SpeciesTable map[components.Species]*Descriptor

// Get returns the descriptor for the species, or nil.
func (t SpeciesTable) Get(s components.Species) *Descriptor {
	return t[s]
}

// NewSpeciesTable builds descriptors for every recognised species from the
// configuration. Missing or invalid species entries are an error.
func NewSpeciesTable(cfg *config.Config) (SpeciesTable, error) {
	table := make(SpeciesTable, len(components.AnimalSpecies))
	for _, species := range components.AnimalSpecies {
		sc, ok := cfg.Species[species.Key()]
		if !ok {
			return nil, fmt.Errorf("species %q missing from config", species.Key())
		}
		if err := validateSpecies(sc); err != nil {
			return nil, fmt.Errorf("species %q: %w", species.Key(), err)
		}

		d := &Descriptor{
			Species:       species,
			Kind:          species.Kind(),
			SpeciesConfig: sc,
		}
		if d.Kind == components.KindPredator {
			d.BreedGate = predatorBreedGate
			d.FindMate = anyMate
			d.ForageGate = huntGate
			d.Forage = hunt
			d.NewbornFood = predatorNewbornFood
		} else {
			d.NeedsRoomToBreed = true
			d.BreedGate = preyBreedGate
			d.FindMate = oppositeGenderMate
			d.ForageGate = grazeGate
			d.Forage = graze
			d.NewbornFood = preyNewbornFood
		}

		switch species {
		case components.SpeciesCreeper:
			// Rain makes creepers wipe out every adjacent prey before hunting.
			d.Forage = rainHunt
		case components.SpeciesZombie:
			d.OnKill = recordNocturnalKill
			d.StepHook = spawnNocturnal
		}

		table[species] = d
	}
	return table, nil
}

func validateSpecies(sc config.SpeciesConfig) error {
	switch {
	case sc.MaxAge < 1:
		return fmt.Errorf("max_age must be positive, got %d", sc.MaxAge)
	case sc.HungerLimit < 1:
		return fmt.Errorf("hunger_limit must be positive, got %d", sc.HungerLimit)
	case sc.MaxLitterSize < 1:
		return fmt.Errorf("max_litter_size must be positive, got %d", sc.MaxLitterSize)
	case sc.BaseBreedingProbability < 0 || sc.BaseBreedingProbability > 1:
		return fmt.Errorf("base_breeding_probability must be in [0,1], got %v", sc.BaseBreedingProbability)
	}
	return nil
}

// preyNewbornFood draws uniformly from [limit/2, limit).
func preyNewbornFood(rng *rand.Rand, d *Descriptor) int {
	lo := d.HungerLimit / 2
	span := d.HungerLimit - lo
	if span <= 0 {
		return d.HungerLimit
	}
	return lo + rng.Intn(span)
}

// predatorNewbornFood starts predators at a third of their limit.
func predatorNewbornFood(_ *rand.Rand, d *Descriptor) int {
	return d.HungerLimit / 3
}

// NewMob builds an individual of the species at loc. With randomAge the age
// is drawn from [0, maxAge); otherwise the mob is a newborn of age 0.
func (d *Descriptor) NewMob(rng *rand.Rand, loc components.Location, randomAge bool) components.Mob {
	m := components.Mob{
		Species: d.Species,
		Gender:  components.Gender(rng.Intn(2)),
		Alive:   true,
	}
	if randomAge {
		m.Age = rng.Intn(d.MaxAge)
	}
	m.Food = d.NewbornFood(rng, d)
	m.SetLocation(loc)
	return m
}
