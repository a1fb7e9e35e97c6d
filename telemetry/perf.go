package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of a simulation step. Values follow the order in which
// the simulator runs them.
type Phase uint8

const (
	PhaseEnvironment Phase = iota
	PhasePolicy
	PhaseFlora
	PhaseMobs
	PhaseSpawn
	PhasePrune
	PhaseTelemetry
	phaseCount
)

var phaseNames = [phaseCount]string{
	PhaseEnvironment: "environment",
	PhasePolicy:      "policy",
	PhaseFlora:       "flora",
	PhaseMobs:        "mobs",
	PhaseSpawn:       "spawn",
	PhasePrune:       "prune",
	PhaseTelemetry:   "telemetry",
}

// String returns the column name of the phase.
func (p Phase) String() string {
	if p >= phaseCount {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases returns every phase in step order.
func Phases() []Phase {
	out := make([]Phase, phaseCount)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

type phaseTimes [phaseCount]time.Duration

type stepSample struct {
	total  time.Duration
	phases phaseTimes
}

// PerfCollector times simulation steps phase by phase over a rolling window.
type PerfCollector struct {
	now func() time.Time

	samples []stepSample
	next    int
	filled  int

	current    phaseTimes
	stepStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize steps.
func NewPerfCollector(windowSize int) *PerfCollector {
	return newPerfCollector(windowSize, time.Now)
}

func newPerfCollector(windowSize int, now func() time.Time) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		now:     now,
		samples: make([]stepSample, windowSize),
	}
}

// StartStep begins timing a step.
func (p *PerfCollector) StartStep() {
	p.stepStart = p.now()
	p.current = phaseTimes{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := p.now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = phase < phaseCount
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndStep closes the running phase and stores the step in the window.
func (p *PerfCollector) EndStep() {
	now := p.now()
	p.closePhase(now)

	p.samples[p.next] = stepSample{total: now.Sub(p.stepStart), phases: p.current}
	p.next = (p.next + 1) % len(p.samples)
	if p.filled < len(p.samples) {
		p.filled++
	}
}

// RecordFrame records the time between two terminal redraws.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats aggregates the steps currently in the window.
type PerfStats struct {
	Steps   int
	AvgStep time.Duration
	MinStep time.Duration
	MaxStep time.Duration

	StepsPerSecond float64

	FrameDuration time.Duration
	FPS           float64

	phaseAvg phaseTimes
}

// PhaseAvg returns the mean time spent in phase per step.
func (s PerfStats) PhaseAvg(phase Phase) time.Duration {
	if phase >= phaseCount {
		return 0
	}
	return s.phaseAvg[phase]
}

// PhasePct returns the share of the mean step spent in phase, in percent.
func (s PerfStats) PhasePct(phase Phase) float64 {
	if s.AvgStep <= 0 {
		return 0
	}
	return float64(s.PhaseAvg(phase)) / float64(s.AvgStep) * 100
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{Steps: p.filled, FrameDuration: p.frame}
	if p.frame > 0 {
		stats.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return stats
	}

	var total time.Duration
	var sum phaseTimes
	for i, s := range p.samples[:p.filled] {
		total += s.total
		if i == 0 || s.total < stats.MinStep {
			stats.MinStep = s.total
		}
		stats.MaxStep = max(stats.MaxStep, s.total)
		for ph, d := range s.phases {
			sum[ph] += d
		}
	}

	n := time.Duration(p.filled)
	stats.AvgStep = total / n
	for ph := range sum {
		stats.phaseAvg[ph] = sum[ph] / n
	}
	if stats.AvgStep > 0 {
		stats.StepsPerSecond = float64(time.Second) / float64(stats.AvgStep)
	}
	return stats
}

// LogStats logs the window with one percentage per phase that took
// measurable time.
func (s PerfStats) LogStats() {
	attrs := []any{
		"steps", s.Steps,
		"avg_step_us", s.AvgStep.Microseconds(),
		"max_step_us", s.MaxStep.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, ph := range Phases() {
		if pct := s.PhasePct(ph); pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfRow is one line of perf.csv: a phase, or the whole step, averaged
// over the window ending at WindowEnd.
type PerfRow struct {
	RunID     string  `csv:"run_id"`
	WindowEnd int32   `csv:"window_end"`
	Phase     string  `csv:"phase"`
	AvgUS     int64   `csv:"avg_us"`
	Pct       float64 `csv:"pct"`
}

// Rows flattens the stats into one row for the whole step followed by one
// row per phase in step order. An empty window yields no rows.
func (s PerfStats) Rows(runID string, windowEnd int32) []PerfRow {
	if s.Steps == 0 {
		return nil
	}
	rows := make([]PerfRow, 0, phaseCount+1)
	rows = append(rows, PerfRow{
		RunID:     runID,
		WindowEnd: windowEnd,
		Phase:     "step",
		AvgUS:     s.AvgStep.Microseconds(),
		Pct:       100,
	})
	for _, ph := range Phases() {
		rows = append(rows, PerfRow{
			RunID:     runID,
			WindowEnd: windowEnd,
			Phase:     ph.String(),
			AvgUS:     s.PhaseAvg(ph).Microseconds(),
			Pct:       s.PhasePct(ph),
		})
	}
	return rows
}
