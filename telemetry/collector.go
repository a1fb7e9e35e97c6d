package telemetry

import (
	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/systems"
)

// deathCauseCount sizes the per-cause death counters.
const deathCauseCount = int(systems.DeathDisplaced) + 1

// Collector accumulates events within step windows and produces WindowStats.
// It implements systems.Recorder.
type Collector struct {
	windowSteps int32
	runID       string

	// Current window tracking
	windowStartStep int32
	step            int32

	counts map[EventType]map[components.Species]int
	deaths [deathCauseCount]int

	// Optional event sink, called for every recorded event.
	onEvent func(Event)
}

var _ systems.Recorder = (*Collector)(nil)

// NewCollector creates a new stats collector flushing every windowSteps steps.
func NewCollector(windowSteps int32, runID string) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	c := &Collector{
		windowSteps: windowSteps,
		runID:       runID,
	}
	c.resetCounts()
	return c
}

// SetEventSink installs a callback receiving every event as it is recorded.
func (c *Collector) SetEventSink(fn func(Event)) {
	c.onEvent = fn
}

// SetStep stamps subsequent events with the given step.
func (c *Collector) SetStep(step int32) {
	c.step = step
}

func (c *Collector) resetCounts() {
	c.counts = make(map[EventType]map[components.Species]int, eventTypeCount)
	for t := EventType(0); t < eventTypeCount; t++ {
		c.counts[t] = make(map[components.Species]int)
	}
	c.deaths = [deathCauseCount]int{}
}

func (c *Collector) record(ev Event) {
	c.counts[ev.Type][ev.Species]++
	if ev.Type == EventDeath && int(ev.Cause) < deathCauseCount {
		c.deaths[ev.Cause]++
	}
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}

// RecordBirth records a birth.
func (c *Collector) RecordBirth(species components.Species) {
	c.record(NewBirthEvent(c.step, species))
}

// RecordSpawn records a nocturnal spawn.
func (c *Collector) RecordSpawn(species components.Species) {
	c.record(NewSpawnEvent(c.step, species))
}

// RecordDeath records a death and its cause.
func (c *Collector) RecordDeath(species components.Species, cause systems.DeathCause) {
	c.record(NewDeathEvent(c.step, species, cause))
}

// RecordKill records a predator eating prey.
func (c *Collector) RecordKill(predator, prey components.Species) {
	c.record(NewKillEvent(c.step, predator, prey))
}

// RecordInfection records a new infection.
func (c *Collector) RecordInfection(species components.Species) {
	c.record(NewInfectionEvent(c.step, species))
}

// RecordForage records prey grazing.
func (c *Collector) RecordForage(species components.Species) {
	c.record(NewForageEvent(c.step, species))
}

// Count returns the number of events of a type recorded for the species in
// the current window.
func (c *Collector) Count(t EventType, species components.Species) int {
	return c.counts[t][species]
}

// Deaths returns the number of deaths with the given cause in the current window.
func (c *Collector) Deaths(cause systems.DeathCause) int {
	if int(cause) >= deathCauseCount {
		return 0
	}
	return c.deaths[cause]
}

// kindTotal sums events of a type over every species of the kind.
func (c *Collector) kindTotal(t EventType, kind components.Kind) int {
	total := 0
	for species, n := range c.counts[t] {
		if species.Kind() == kind {
			total += n
		}
	}
	return total
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int32) bool {
	return currentStep-c.windowStartStep >= c.windowSteps
}

// Flush produces a WindowStats from the window counters and a population
// sample taken at the window end, then resets counters for the next window.
func (c *Collector) Flush(currentStep int32, env components.Environment, sample PopulationSample) WindowStats {
	stats := WindowStats{
		RunID:           c.runID,
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   currentStep,
		Time:            env.Time.String(),
		Weather:         env.Weather.String(),
		Season:          env.Season.String(),

		Creeper:  sample.Count(components.SpeciesCreeper),
		Zombie:   sample.Count(components.SpeciesZombie),
		Cow:      sample.Count(components.SpeciesCow),
		Pig:      sample.Count(components.SpeciesPig),
		Villager: sample.Count(components.SpeciesVillager),
		Grass:    sample.Grass,
		Diseased: sample.Diseased,

		PreyBirths: c.kindTotal(EventBirth, components.KindPrey),
		PredBirths: c.kindTotal(EventBirth, components.KindPredator),
		Spawns:     c.kindTotal(EventSpawn, components.KindPredator),
		PreyDeaths: c.kindTotal(EventDeath, components.KindPrey),
		PredDeaths: c.kindTotal(EventDeath, components.KindPredator),

		DeathsAge:        c.deaths[systems.DeathAge],
		DeathsStarvation: c.deaths[systems.DeathStarvation],
		DeathsEaten:      c.deaths[systems.DeathEaten],
		DeathsDisease:    c.deaths[systems.DeathDisease],
		DeathsDisplaced:  c.deaths[systems.DeathDisplaced],

		Kills:      c.kindTotal(EventKill, components.KindPredator),
		Infections: c.kindTotal(EventInfection, components.KindPrey) + c.kindTotal(EventInfection, components.KindPredator),
		Forages:    c.kindTotal(EventForage, components.KindPrey),
	}
	stats.PreyCount = stats.Cow + stats.Pig + stats.Villager
	stats.PredCount = stats.Creeper + stats.Zombie

	stats.PreyAgeMean, stats.PreyAgeStd = MeanStd(sample.PreyAges)
	stats.PredAgeMean, stats.PredAgeStd = MeanStd(sample.PredAges)
	stats.PreyFoodMean, stats.PreyFoodP10, stats.PreyFoodP50, stats.PreyFoodP90 = ComputeFoodStats(sample.PreyFood)
	stats.PredFoodMean, stats.PredFoodP10, stats.PredFoodP50, stats.PredFoodP90 = ComputeFoodStats(sample.PredFood)

	// Reset for next window
	c.windowStartStep = currentStep
	c.resetCounts()

	return stats
}

// Reset discards the current window and restarts counting at step 0.
func (c *Collector) Reset() {
	c.windowStartStep = 0
	c.step = 0
	c.resetCounts()
}
