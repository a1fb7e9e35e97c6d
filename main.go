package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/config"
	"github.com/pthm-cable/mobsim/game"
	"github.com/pthm-cable/mobsim/renderer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without the terminal view")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = world.seed, then time-based)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N steps (0 = world.max_steps)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging). The terminal view
	// owns stdout, so interactive runs log to stderr.
	out := os.Stdout
	if !*headless {
		out = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, nil)))

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	steps := *maxSteps
	if steps <= 0 {
		steps = cfg.World.MaxSteps
	}

	if err := run(cfg, steps, *headless, game.Options{
		Seed:      *seed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, steps int, headless bool, opts game.Options) error {
	sim, err := game.New(cfg, opts)
	if err != nil {
		return err
	}
	defer sim.Close()

	slog.Info("starting simulation",
		"run_id", sim.RunID(),
		"seed", sim.Seed(),
		"max_steps", steps,
		"headless", headless,
	)

	if headless {
		sim.Simulate(steps, nil)
	} else {
		term, err := renderer.NewTerminal(time.Duration(cfg.Screen.StepDelayMS) * time.Millisecond)
		if err != nil {
			return err
		}
		sim.Simulate(steps, term)
		// Restore the terminal before the final report is logged.
		term.Close()
	}

	sim.LogWorldState()
	if stats := sim.Perf().Stats(); stats.StepsPerSecond > 0 {
		stats.LogStats()
	}
	for _, species := range components.AnimalSpecies {
		if sim.Policy().Blocked(species) {
			slog.Info("breeding blocked at exit", "species", species.String())
		}
	}
	return nil
}
