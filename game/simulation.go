package game

import (
	"log/slog"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/field"
	"github.com/pthm-cable/mobsim/systems"
	"github.com/pthm-cable/mobsim/telemetry"
)

// Observer watches a running simulation. Show receives the generation after
// every step; Continue is polled before each step.
type Observer interface {
	Show(step int32, f *field.Field, env components.Environment)
	Continue() bool
}

// Simulate runs up to numSteps steps, stopping early once the field is no
// longer viable or the observer asks to stop. obs may be nil. Returns the
// number of steps taken.
func (s *Simulator) Simulate(numSteps int, obs Observer) int {
	if obs != nil {
		obs.Show(s.step, s.field, s.env)
	}

	taken := 0
	for taken < numSteps && s.field.Viable() {
		if obs != nil && !obs.Continue() {
			break
		}
		s.Step()
		taken++
		if obs != nil {
			obs.Show(s.step, s.field, s.env)
			s.perfCollector.RecordFrame()
		}
	}

	s.logEndOfRun(taken, numSteps)
	return taken
}

// Step advances the world by one generation:
// environment, policy refresh, plants, mobs, species hooks, swap and prune.
func (s *Simulator) Step() {
	perf := s.perfCollector
	perf.StartStep()

	perf.StartPhase(telemetry.PhaseEnvironment)
	s.step++
	s.collector.SetStep(s.step)
	s.advanceEnvironment()
	next := s.field.NextGeneration(s.env)

	perf.StartPhase(telemetry.PhasePolicy)
	s.recordBlockChanges(s.policy.Refresh(s.field))

	st := &systems.Step{
		Current:     s.field,
		Next:        next,
		Species:     s.species,
		Policy:      s.policy,
		Spawner:     s.spawner,
		Rand:        s.rng,
		Recorder:    s.collector,
		Behavior:    s.cfg.Behavior,
		Environment: s.cfg.Environment,
		Flora:       s.cfg.Flora,
	}

	perf.StartPhase(telemetry.PhaseFlora)
	systems.UpdateFlora(st)

	perf.StartPhase(telemetry.PhaseMobs)
	for _, e := range s.field.Mobs() {
		systems.Act(st, e)
	}

	perf.StartPhase(telemetry.PhaseSpawn)
	systems.RunStepHooks(st)

	perf.StartPhase(telemetry.PhasePrune)
	s.swap(next)

	perf.StartPhase(telemetry.PhaseTelemetry)
	s.checkExtinctions()
	s.flushTelemetry()

	perf.EndStep()
}

// advanceEnvironment applies the fixed cycles for the current step:
// forced Day or Night on their moduli, a new weather every weather interval
// and the next season every season interval.
func (s *Simulator) advanceEnvironment() {
	ec := s.cfg.Environment
	step := int(s.step)

	switch {
	case ec.DayModulus > 0 && step%ec.DayModulus == 0:
		s.env.Time = components.Day
	case ec.NightModulus > 0 && step%ec.NightModulus == 0:
		s.env.Time = components.Night
	}

	if ec.WeatherInterval > 0 && step%ec.WeatherInterval == 0 {
		s.env.Weather = s.changeWeather(s.env.Weather)
		slog.Debug("weather changed", "step", s.step, "weather", s.env.Weather.String())
	}

	if ec.SeasonInterval > 0 && step%ec.SeasonInterval == 0 {
		s.env.Season = s.env.Season.Next()
		slog.Debug("season changed", "step", s.step, "season", s.env.Season.String())
	}
}

// changeWeather draws a weather different from current.
func (s *Simulator) changeWeather(current components.Weather) components.Weather {
	n := components.WeatherCount()
	if n < 2 {
		return current
	}
	w := components.Weather(s.rng.Intn(n - 1))
	if w >= current {
		w++
	}
	return w
}
