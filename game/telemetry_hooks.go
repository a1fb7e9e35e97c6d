package game

import (
	"log/slog"

	"github.com/pthm-cable/mobsim/systems"
	"github.com/pthm-cable/mobsim/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulator) flushTelemetry() {
	if !s.collector.ShouldFlush(s.step) {
		return
	}

	sample := telemetry.SamplePopulation(s.field)
	stats := s.collector.Flush(s.step, s.env, sample)
	perfStats := s.perfCollector.Stats()

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WriteCensus(stats, s.field.PopulationDetails()); err != nil {
			slog.Error("failed to write census", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndStep); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	s.emitBookmarks(s.bookmarkDetector.Check(stats))
}

// recordBlockChanges turns breeding block toggles into bookmarks.
func (s *Simulator) recordBlockChanges(changes []systems.BlockChange) {
	if len(changes) == 0 {
		return
	}
	bookmarks := make([]telemetry.Bookmark, 0, len(changes))
	for _, c := range changes {
		bookmarks = append(bookmarks, telemetry.NewBlockBookmark(s.step, c.Species, c.Blocked, c.Population))
	}
	s.emitBookmarks(bookmarks)
}

// checkExtinctions reports species that died out this step.
func (s *Simulator) checkExtinctions() {
	sample := telemetry.SamplePopulation(s.field)
	bookmarks := s.bookmarkDetector.CheckExtinctions(s.step, sample)
	for _, bm := range bookmarks {
		slog.Info("species extinct", "step", s.step, "description", bm.Description)
	}
	s.emitBookmarks(bookmarks)
}

func (s *Simulator) emitBookmarks(bookmarks []telemetry.Bookmark) {
	for _, bm := range bookmarks {
		if s.logStats {
			bm.LogBookmark()
		}

		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}
