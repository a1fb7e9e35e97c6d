package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/config"
	"github.com/pthm-cable/mobsim/field"
)

func init() {
	config.MustInit("")
}

// countingRecorder tallies every recorded event.
type countingRecorder struct {
	births     map[components.Species]int
	spawns     map[components.Species]int
	deaths     map[DeathCause]int
	kills      int
	infections int
	forages    int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		births: make(map[components.Species]int),
		spawns: make(map[components.Species]int),
		deaths: make(map[DeathCause]int),
	}
}

func (r *countingRecorder) RecordBirth(s components.Species)               { r.births[s]++ }
func (r *countingRecorder) RecordDeath(_ components.Species, c DeathCause) { r.deaths[c]++ }
func (r *countingRecorder) RecordKill(_, _ components.Species)             { r.kills++ }
func (r *countingRecorder) RecordInfection(components.Species)             { r.infections++ }
func (r *countingRecorder) RecordForage(components.Species)                { r.forages++ }
func (r *countingRecorder) RecordSpawn(s components.Species)               { r.spawns[s]++ }

// newTestStep builds a step over an empty depth x width grid using the
// default configuration. Disease is switched off so behaviour tests are not
// disturbed by random infections.
func newTestStep(t *testing.T, depth, width int, seed int64) (*Step, *countingRecorder) {
	t.Helper()
	cfg := config.Cfg()
	table, err := NewSpeciesTable(cfg)
	if err != nil {
		t.Fatalf("NewSpeciesTable: %v", err)
	}
	for _, d := range table {
		d.DiseaseRate = 0
		d.DiseaseSpreadRate = 0
	}

	rng := rand.New(rand.NewSource(seed))
	current := field.New(depth, width, field.NewArena(), rng)
	rec := newCountingRecorder()
	s := &Step{
		Current:     current,
		Next:        current.NextGeneration(current.Environment()),
		Species:     table,
		Policy:      NewBreedingPolicy(table, cfg.Behavior.ThrottleFactor),
		Spawner:     NewNocturnalSpawner(cfg.Behavior.NocturnalSpawnCap),
		Rand:        rng,
		Recorder:    rec,
		Behavior:    cfg.Behavior,
		Environment: cfg.Environment,
		Flora:       cfg.Flora,
	}
	return s, rec
}

// setEnvironment sets the environment of both generations.
func setEnvironment(s *Step, env components.Environment) {
	s.Current.SetEnvironment(env)
	s.Next.SetEnvironment(env)
}

// putMob stores a mob and registers it in the current generation.
func putMob(t *testing.T, s *Step, species components.Species, loc components.Location, age, food int, gender components.Gender) ecs.Entity {
	t.Helper()
	e := s.arena().NewMob(components.Mob{
		Species: species,
		Gender:  gender,
		Alive:   true,
		Age:     age,
		Food:    food,
		Loc:     loc,
		HasLoc:  true,
	})
	if !s.Current.Place(e, loc) {
		t.Fatalf("placing %v at %v failed", species, loc)
	}
	return e
}

// putGrass stores a plant and registers it in the current generation.
func putGrass(t *testing.T, s *Step, loc components.Location, seed bool) ecs.Entity {
	t.Helper()
	e := s.arena().NewPlant(components.Plant{Type: components.PlantGrass, Alive: true, Seed: seed, Loc: loc})
	if !s.Current.Place(e, loc) {
		t.Fatalf("placing grass at %v failed", loc)
	}
	return e
}

// alwaysBreed installs limits under which the species breeds on practically
// every draw.
func alwaysBreed(s *Step, species components.Species) {
	s.Policy.SetLimits(species, 1<<30, 1<<30, 1)
	s.Policy.Refresh(s.Current)
}
