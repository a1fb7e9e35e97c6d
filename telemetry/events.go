// Package telemetry provides population statistics, bookmarking, and CSV output.
package telemetry

import (
	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/systems"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventSpawn
	EventDeath
	EventKill
	EventInfection
	EventForage
	eventTypeCount
)

var eventNames = [...]string{
	EventBirth:     "birth",
	EventSpawn:     "spawn",
	EventDeath:     "death",
	EventKill:      "kill",
	EventInfection: "infection",
	EventForage:    "forage",
}

// String returns the event name.
func (t EventType) String() string {
	if t < eventTypeCount {
		return eventNames[t]
	}
	return "unknown"
}

// Event is a single life-cycle event.
type Event struct {
	Type    EventType
	Step    int32
	Species components.Species

	// Target is the prey species for kills.
	Target components.Species
	// Cause is set for deaths.
	Cause systems.DeathCause
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(step int32, species components.Species) Event {
	return Event{Type: EventBirth, Step: step, Species: species}
}

// NewSpawnEvent creates a nocturnal spawn event.
func NewSpawnEvent(step int32, species components.Species) Event {
	return Event{Type: EventSpawn, Step: step, Species: species}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(step int32, species components.Species, cause systems.DeathCause) Event {
	return Event{Type: EventDeath, Step: step, Species: species, Cause: cause}
}

// NewKillEvent creates a kill event.
func NewKillEvent(step int32, predator, prey components.Species) Event {
	return Event{Type: EventKill, Step: step, Species: predator, Target: prey}
}

// NewInfectionEvent creates an infection event.
func NewInfectionEvent(step int32, species components.Species) Event {
	return Event{Type: EventInfection, Step: step, Species: species}
}

// NewForageEvent creates a grazing event.
func NewForageEvent(step int32, species components.Species) Event {
	return Event{Type: EventForage, Step: step, Species: species}
}
