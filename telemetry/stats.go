package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/field"
)

// WindowStats holds aggregated statistics for a step window.
type WindowStats struct {
	RunID           string `csv:"run_id"`
	WindowStartStep int32  `csv:"-"`
	WindowEndStep   int32  `csv:"window_end"`

	// Environment at window end
	Time    string `csv:"time"`
	Weather string `csv:"weather"`
	Season  string `csv:"season"`

	// Population counts at window end
	Creeper   int `csv:"creeper"`
	Zombie    int `csv:"zombie"`
	Cow       int `csv:"cow"`
	Pig       int `csv:"pig"`
	Villager  int `csv:"villager"`
	Grass     int `csv:"grass"`
	PreyCount int `csv:"prey"`
	PredCount int `csv:"pred"`
	Diseased  int `csv:"diseased"`

	// Events during window
	PreyBirths int `csv:"prey_births"`
	PredBirths int `csv:"pred_births"`
	Spawns     int `csv:"spawns"`
	PreyDeaths int `csv:"prey_deaths"`
	PredDeaths int `csv:"pred_deaths"`

	DeathsAge        int `csv:"deaths_age"`
	DeathsStarvation int `csv:"deaths_starvation"`
	DeathsEaten      int `csv:"deaths_eaten"`
	DeathsDisease    int `csv:"deaths_disease"`
	DeathsDisplaced  int `csv:"deaths_displaced"`

	Kills      int `csv:"kills"`
	Infections int `csv:"infections"`
	Forages    int `csv:"forages"`

	// Age and food distribution (sampled at window end)
	PreyAgeMean  float64 `csv:"prey_age_mean"`
	PreyAgeStd   float64 `csv:"prey_age_std"`
	PreyFoodMean float64 `csv:"prey_food_mean"`
	PreyFoodP10  float64 `csv:"prey_food_p10"`
	PreyFoodP50  float64 `csv:"prey_food_p50"`
	PreyFoodP90  float64 `csv:"prey_food_p90"`

	PredAgeMean  float64 `csv:"pred_age_mean"`
	PredAgeStd   float64 `csv:"pred_age_std"`
	PredFoodMean float64 `csv:"pred_food_mean"`
	PredFoodP10  float64 `csv:"pred_food_p10"`
	PredFoodP50  float64 `csv:"pred_food_p50"`
	PredFoodP90  float64 `csv:"pred_food_p90"`
}

// PopulationSample is a snapshot of the living population of a field.
type PopulationSample struct {
	Counts   map[components.Species]int
	Grass    int
	Diseased int

	PreyAges, PredAges []float64
	PreyFood, PredFood []float64
}

// Count returns the living population of a species.
func (p PopulationSample) Count(species components.Species) int {
	return p.Counts[species]
}

// SamplePopulation walks the arena and collects every living mob and grown
// or seeded grass patch registered in f.
func SamplePopulation(f *field.Field) PopulationSample {
	sample := PopulationSample{Counts: make(map[components.Species]int, len(components.AnimalSpecies))}

	f.Arena().EachMob(func(e ecs.Entity, m *components.Mob) {
		if !m.Alive || !f.Contains(e) {
			return
		}
		sample.Counts[m.Species]++
		if m.Diseased {
			sample.Diseased++
		}
		if m.Species.Kind() == components.KindPredator {
			sample.PredAges = append(sample.PredAges, float64(m.Age))
			sample.PredFood = append(sample.PredFood, float64(m.Food))
		} else {
			sample.PreyAges = append(sample.PreyAges, float64(m.Age))
			sample.PreyFood = append(sample.PreyFood, float64(m.Food))
		}
	})
	f.Arena().EachPlant(func(e ecs.Entity, p *components.Plant) {
		if p.Alive && f.Contains(e) {
			sample.Grass++
		}
	})
	return sample
}

// Percentile returns the empirical p-quantile of a sorted slice.
// p is clamped to [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// MeanStd returns the mean and sample standard deviation of values.
// Fewer than two values have zero deviation.
func MeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// ComputeFoodStats calculates mean and percentiles from food levels.
func ComputeFoodStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("window_start", int(s.WindowStartStep)),
		slog.Int("window_end", int(s.WindowEndStep)),
		slog.String("time", s.Time),
		slog.String("weather", s.Weather),
		slog.String("season", s.Season),
		slog.Int("creeper", s.Creeper),
		slog.Int("zombie", s.Zombie),
		slog.Int("cow", s.Cow),
		slog.Int("pig", s.Pig),
		slog.Int("villager", s.Villager),
		slog.Int("grass", s.Grass),
		slog.Int("diseased", s.Diseased),
		slog.Int("prey_births", s.PreyBirths),
		slog.Int("pred_births", s.PredBirths),
		slog.Int("spawns", s.Spawns),
		slog.Int("prey_deaths", s.PreyDeaths),
		slog.Int("pred_deaths", s.PredDeaths),
		slog.Int("deaths_age", s.DeathsAge),
		slog.Int("deaths_starvation", s.DeathsStarvation),
		slog.Int("deaths_eaten", s.DeathsEaten),
		slog.Int("deaths_disease", s.DeathsDisease),
		slog.Int("deaths_displaced", s.DeathsDisplaced),
		slog.Int("kills", s.Kills),
		slog.Int("infections", s.Infections),
		slog.Int("forages", s.Forages),
		slog.Float64("prey_age_mean", s.PreyAgeMean),
		slog.Float64("prey_food_mean", s.PreyFoodMean),
		slog.Float64("pred_age_mean", s.PredAgeMean),
		slog.Float64("pred_food_mean", s.PredFoodMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
