package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/config"
	"github.com/pthm-cable/mobsim/field"
)

// DeathCause classifies why a mob died.
type DeathCause uint8

const (
	DeathAge DeathCause = iota
	DeathStarvation
	DeathEaten
	DeathDisease   // the disease age jump crossed max age
	DeathDisplaced // lost a contested cell in the next generation
)

// String returns the display name of the cause.
func (c DeathCause) String() string {
	switch c {
	case DeathAge:
		return "age"
	case DeathStarvation:
		return "starvation"
	case DeathEaten:
		return "eaten"
	case DeathDisease:
		return "disease"
	case DeathDisplaced:
		return "displaced"
	}
	return "unknown"
}

// Recorder receives life-cycle events produced while a step runs.
type Recorder interface {
	RecordBirth(species components.Species)
	RecordDeath(species components.Species, cause DeathCause)
	RecordKill(predator, prey components.Species)
	RecordInfection(species components.Species)
	RecordForage(species components.Species)
	RecordSpawn(species components.Species)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) RecordBirth(components.Species)                    {}
func (NopRecorder) RecordDeath(components.Species, DeathCause)        {}
func (NopRecorder) RecordKill(components.Species, components.Species) {}
func (NopRecorder) RecordInfection(components.Species)                {}
func (NopRecorder) RecordForage(components.Species)                   {}
func (NopRecorder) RecordSpawn(components.Species)                    {}

// Step is the context threaded through every action of one generation.
// Entities sense Current and write into Next; Current is never mutated
// structurally and Next is never read for sensing, except for mate search
// and free-cell queries which deliberately look at Next.
type Step struct {
	Current *field.Field
	Next    *field.Field

	Species  SpeciesTable
	Policy   *BreedingPolicy
	Spawner  *NocturnalSpawner
	Rand     *rand.Rand
	Recorder Recorder

	Behavior    config.BehaviorConfig
	Environment config.EnvironmentConfig
	Flora       config.FloraConfig
}

// arena returns the shared entity storage.
func (s *Step) arena() *field.Arena {
	return s.Current.Arena()
}

// recorder returns the event sink, never nil.
func (s *Step) recorder() Recorder {
	if s.Recorder == nil {
		return NopRecorder{}
	}
	return s.Recorder
}

// kill marks the mob dead and reports the cause.
func (s *Step) kill(m *components.Mob, cause DeathCause) {
	if !m.Alive {
		return
	}
	m.SetDead()
	s.recorder().RecordDeath(m.Species, cause)
}

// spawn stores a new mob and registers it in the next generation. The
// entity is discarded if its cell is already taken.
func (s *Step) spawn(m components.Mob) (ecs.Entity, bool) {
	e := s.arena().NewMob(m)
	if !s.Next.Place(e, m.Loc) {
		s.arena().Destroy(e)
		return ecs.Entity{}, false
	}
	return e, true
}
