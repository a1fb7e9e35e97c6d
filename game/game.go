// Package game drives the simulation: it builds the world, advances it one
// generation at a time, and feeds telemetry.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/config"
	"github.com/pthm-cable/mobsim/field"
	"github.com/pthm-cable/mobsim/systems"
	"github.com/pthm-cable/mobsim/telemetry"
)

// Simulator holds the complete simulation state.
type Simulator struct {
	cfg  *config.Config
	seed int64
	rng  *rand.Rand

	arena *field.Arena
	field *field.Field

	// State
	step int32
	env  components.Environment

	species systems.SpeciesTable
	policy  *systems.BreedingPolicy
	spawner *systems.NocturnalSpawner

	// Telemetry
	runID            string
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
}

// New creates a simulator from cfg and populates the initial world.
func New(cfg *config.Config, opts Options) (*Simulator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	species, err := systems.NewSpeciesTable(cfg)
	if err != nil {
		return nil, fmt.Errorf("building species table: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.World.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	outputManager, err := telemetry.NewOutputManager(opts.OutputDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := outputManager.WriteConfig(cfg); err != nil {
		outputManager.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}
	if dir := outputManager.Dir(); dir != "" {
		slog.Info("writing run output", "dir", dir)
	}

	rng := rand.New(rand.NewSource(seed))
	arena := field.NewArena()

	s := &Simulator{
		cfg:     cfg,
		seed:    seed,
		rng:     rng,
		arena:   arena,
		field:   field.New(cfg.World.Depth, cfg.World.Width, arena, rng),
		species: species,
		policy:  systems.NewBreedingPolicy(species, cfg.Behavior.ThrottleFactor),
		spawner: systems.NewNocturnalSpawner(cfg.Behavior.NocturnalSpawnCap),

		runID:            runID,
		collector:        telemetry.NewCollector(int32(cfg.Telemetry.StatsWindow), runID),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager:    outputManager,
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}

	if opts.EventSink != nil {
		s.collector.SetEventSink(opts.EventSink)
	}

	if cfg.Derived.DimensionsSubstituted {
		slog.Warn("invalid world dimensions, using defaults",
			"depth", config.DefaultDepth,
			"width", config.DefaultWidth,
		)
	}

	s.Populate()
	return s, nil
}

// StepCount returns the number of steps taken since the last reset.
func (s *Simulator) StepCount() int32 {
	return s.step
}

// Field returns the current generation.
func (s *Simulator) Field() *field.Field {
	return s.field
}

// Environment returns the current environment triple.
func (s *Simulator) Environment() components.Environment {
	return s.env
}

// Policy returns the breeding policy.
func (s *Simulator) Policy() *systems.BreedingPolicy {
	return s.policy
}

// Seed returns the seed of the random source.
func (s *Simulator) Seed() int64 {
	return s.seed
}

// RunID returns the run identifier stamped into telemetry.
func (s *Simulator) RunID() string {
	return s.runID
}

// Perf returns the step timing collector.
func (s *Simulator) Perf() *telemetry.PerfCollector {
	return s.perfCollector
}

// Close flushes and closes telemetry output.
func (s *Simulator) Close() error {
	if err := s.outputManager.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}
