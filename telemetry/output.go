package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/mobsim/config"
	"github.com/pthm-cable/mobsim/field"
)

// csvLog appends gocsv records to one file. The header goes out with the
// first non-empty batch.
type csvLog struct {
	name   string
	file   *os.File
	header bool
}

func openCSVLog(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{name: name, file: f}, nil
}

func (l *csvLog) append(records any) error {
	var err error
	if l.header {
		err = gocsv.MarshalWithoutHeaders(records, l.file)
	} else {
		err = gocsv.Marshal(records, l.file)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", l.name, err)
	}
	l.header = true
	return nil
}

// CensusRow is the count of one population entry at the end of a window.
type CensusRow struct {
	RunID     string `csv:"run_id"`
	WindowEnd int32  `csv:"window_end"`
	Season    string `csv:"season"`
	Weather   string `csv:"weather"`
	Name      string `csv:"name"`
	Count     int    `csv:"count"`
}

// OutputManager writes one run directory:
//
//	population.csv  one WindowStats row per window
//	census.csv      one row per species and grass per window
//	perf.csv        one row per step phase per window
//	bookmarks.csv   notable events as they happen
//	config.yaml     the configuration the run started from
type OutputManager struct {
	dir   string
	runID string

	population *csvLog
	census     *csvLog
	perf       *csvLog
	bookmarks  *csvLog
}

// NewOutputManager creates the run directory, a runID subdirectory of dir,
// and opens its CSV files. An empty dir disables output and returns nil.
func NewOutputManager(dir, runID string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if runID != "" {
		dir = filepath.Join(dir, runID)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, runID: runID}
	for _, target := range []struct {
		log  **csvLog
		name string
	}{
		{&om.population, "population.csv"},
		{&om.census, "census.csv"},
		{&om.perf, "perf.csv"},
		{&om.bookmarks, "bookmarks.csv"},
	} {
		l, err := openCSVLog(dir, target.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*target.log = l
	}
	return om, nil
}

// WriteConfig saves the configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window to population.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.population.append([]WindowStats{stats})
}

// WriteCensus appends one census.csv row per population entry, in the
// order the field reports them.
func (om *OutputManager) WriteCensus(stats WindowStats, details field.PopulationDetails) error {
	if om == nil || len(details) == 0 {
		return nil
	}
	rows := make([]CensusRow, len(details))
	for i, c := range details {
		rows[i] = CensusRow{
			RunID:     om.runID,
			WindowEnd: stats.WindowEndStep,
			Season:    stats.Season,
			Weather:   stats.Weather,
			Name:      c.Name,
			Count:     c.Count,
		}
	}
	return om.census.append(rows)
}

// WritePerf appends the phase breakdown of a window to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	rows := stats.Rows(om.runID, windowEnd)
	if len(rows) == 0 {
		return nil
	}
	return om.perf.append(rows)
}

// WriteBookmark appends a bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.append([]Bookmark{b})
}

// Dir returns the run directory, or "" when output is disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every open file and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, l := range []*csvLog{om.population, om.census, om.perf, om.bookmarks} {
		if l == nil {
			continue
		}
		if err := l.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
