package game

import (
	"github.com/pthm-cable/mobsim/telemetry"
)

// Options configures a Simulator beyond the loaded config.
type Options struct {
	// Seed for the run's random source. 0 falls back to world.seed, and a
	// zero world.seed to the current time.
	Seed int64

	// RunID stamps telemetry output. Empty generates a random UUID.
	RunID string

	// LogStats logs each stats window and bookmark through slog.
	LogStats bool

	// OutputDir enables CSV output under OutputDir/RunID.
	OutputDir string

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)

	// EventSink receives every life-cycle event as it happens.
	EventSink func(telemetry.Event)
}
