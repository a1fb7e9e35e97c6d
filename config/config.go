// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Default grid dimensions used when the configured ones are invalid.
const (
	DefaultDepth = 80
	DefaultWidth = 120
)

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig              `yaml:"world"`
	Environment EnvironmentConfig        `yaml:"environment"`
	Behavior    BehaviorConfig           `yaml:"behavior"`
	Flora       FloraConfig              `yaml:"flora"`
	Species     map[string]SpeciesConfig `yaml:"species"`
	Telemetry   TelemetryConfig          `yaml:"telemetry"`
	Screen      ScreenConfig             `yaml:"screen"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and run parameters.
type WorldConfig struct {
	Depth    int   `yaml:"depth"`     // rows
	Width    int   `yaml:"width"`     // columns
	Seed     int64 `yaml:"seed"`      // 0 = time-based
	MaxSteps int   `yaml:"max_steps"` // run budget for a long simulation
}

// EnvironmentConfig holds the step moduli driving the environment cycles.
type EnvironmentConfig struct {
	DayModulus              int     `yaml:"day_modulus"`      // step % this == 0 forces Day
	NightModulus            int     `yaml:"night_modulus"`    // step % this == 0 forces Night
	WeatherInterval         int     `yaml:"weather_interval"` // steps between weather changes
	SeasonInterval          int     `yaml:"season_interval"`  // steps between season changes
	WinterDiseaseMultiplier float64 `yaml:"winter_disease_multiplier"`
}

// BehaviorConfig holds the hunger fractions and radii of the action pipeline.
type BehaviorConfig struct {
	PreyBreedHunger     float64 `yaml:"prey_breed_hunger"`     // breed when food > limit * this
	PreyForageHunger    float64 `yaml:"prey_forage_hunger"`    // forage when food < limit * this
	PredatorBreedHunger float64 `yaml:"predator_breed_hunger"` // breed when food > limit * this
	PredatorHuntHunger  float64 `yaml:"predator_hunt_hunger"`  // hunt when food < limit * this
	PredatorCrowdingCap int     `yaml:"predator_crowding_cap"` // breed only with fewer same-species neighbours
	HuntRadius          int     `yaml:"hunt_radius"`
	StationaryDecay     float64 `yaml:"stationary_decay"` // fraction of hunger limit lost when immobile
	ThrottleFactor      float64 `yaml:"throttle_factor"`  // breeding probability multiplier above repopulation threshold
	NocturnalSpawnCap   int     `yaml:"nocturnal_spawn_cap"`
}

// FloraConfig holds grass parameters.
type FloraConfig struct {
	GrowthProbability   float64 `yaml:"growth_probability"`
	FoodValue           int     `yaml:"food_value"`
	CreationProbability float64 `yaml:"creation_probability"`
	ClusterMax          int     `yaml:"cluster_max"` // extra patches placed next to a seeded patch (1..this)
}

// SpeciesConfig holds per-species constants and population policy.
type SpeciesConfig struct {
	BreedingAge       int     `yaml:"breeding_age"`
	MaxAge            int     `yaml:"max_age"`
	MaxLitterSize     int     `yaml:"max_litter_size"`
	HungerLimit       int     `yaml:"hunger_limit"`
	FoodValue         int     `yaml:"food_value"` // nutrition when eaten
	DiseaseRate       float64 `yaml:"disease_rate"`
	DiseaseSpreadRate float64 `yaml:"disease_spread_rate"`

	CreationProbability     float64 `yaml:"creation_probability"`
	CarryingCapacity        int     `yaml:"carrying_capacity"`
	RepopulationThreshold   int     `yaml:"repopulation_threshold"`
	BaseBreedingProbability float64 `yaml:"base_breeding_probability"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // steps per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// ScreenConfig holds terminal rendering settings.
type ScreenConfig struct {
	StepDelayMS int `yaml:"step_delay_ms"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DimensionsSubstituted bool // world depth/width were invalid and replaced by defaults
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file.
		// A species entry in the file replaces the whole default entry.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Species = make(map[string]SpeciesConfig, len(c.Species))
	for k, v := range c.Species {
		out.Species[k] = v
	}
	return &out
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DimensionsSubstituted = false
	if c.World.Depth <= 0 || c.World.Width <= 0 {
		c.World.Depth = DefaultDepth
		c.World.Width = DefaultWidth
		c.Derived.DimensionsSubstituted = true
	}
	if c.Environment.WinterDiseaseMultiplier <= 0 {
		c.Environment.WinterDiseaseMultiplier = 1
	}
	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}
	if c.Flora.ClusterMax < 0 {
		c.Flora.ClusterMax = 0
	}
	if c.Species == nil {
		c.Species = make(map[string]SpeciesConfig)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
