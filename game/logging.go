package game

import (
	"log/slog"

	"github.com/dustin/go-humanize"
)

// logEndOfRun reports why and when a run stopped.
func (s *Simulator) logEndOfRun(taken, budget int) {
	reason := "step budget reached"
	switch {
	case !s.field.Viable():
		reason = "no living mobs"
	case taken < budget:
		reason = "stopped by observer"
	}

	mobs, plants := s.arena.Counts()
	slog.Info("simulation ended",
		"reason", reason,
		"step", s.step,
		"steps_taken", humanize.Comma(int64(taken)),
		"mobs", humanize.Comma(int64(mobs)),
		"plants", humanize.Comma(int64(plants)),
		"population", s.field.PopulationDetails().String(),
		"run_id", s.runID,
	)
}

// LogWorldState logs the population of the current generation.
func (s *Simulator) LogWorldState() {
	attrs := []any{
		"step", s.step,
		"time", s.env.Time.String(),
		"weather", s.env.Weather.String(),
		"season", s.env.Season.String(),
	}
	for _, c := range s.field.PopulationDetails() {
		attrs = append(attrs, c.Name, c.Count)
	}
	slog.Info("world", attrs...)
}
