package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/config"
	"github.com/pthm-cable/mobsim/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestDefaultsWithinBounds(t *testing.T) {
	pv := NewParamVector()
	for _, spec := range pv.Specs {
		if spec.Default < spec.Min || spec.Default > spec.Max {
			t.Errorf("%s default %v outside [%v, %v]", spec.Name, spec.Default, spec.Min, spec.Max)
		}
	}
}

func TestApplyAndExtract(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	values := []float64{0.3, 1000, 0.5, 0.1, 400, 0.25, 0.3, 0.01, 40}
	pv.ApplyToConfig(cfg, values)

	for _, species := range components.AnimalSpecies {
		sc := cfg.Species[species.Key()]
		if species.Kind() == components.KindPredator {
			if sc.CarryingCapacity != 400 || sc.RepopulationThreshold != 100 || sc.BaseBreedingProbability != 0.1 {
				t.Errorf("%v = %+v", species, sc)
			}
		} else if sc.CarryingCapacity != 1000 || sc.RepopulationThreshold != 500 || sc.BaseBreedingProbability != 0.3 {
			t.Errorf("%v = %+v", species, sc)
		}
	}

	got := pv.ExtractFromConfig(cfg)
	for i := range values {
		if math.Abs(got[i]-values[i]) > 1e-9 {
			t.Errorf("%s: applied %v, extracted %v", pv.Specs[i].Name, values[i], got[i])
		}
	}
}

func TestApplyClamps(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	values := pv.DefaultVector()
	values[0] = 5  // prey_base_prob above its bound
	values[6] = -1 // throttle_factor below its bound
	pv.ApplyToConfig(cfg, values)

	if got := cfg.Species["cow"].BaseBreedingProbability; got != pv.Specs[0].Max {
		t.Errorf("prey base probability = %v, want %v", got, pv.Specs[0].Max)
	}
	if got := cfg.Behavior.ThrottleFactor; got != pv.Specs[6].Min {
		t.Errorf("throttle = %v, want %v", got, pv.Specs[6].Min)
	}
}

func TestComputeQuality(t *testing.T) {
	window := func(prey, pred int) telemetry.WindowStats {
		return telemetry.WindowStats{
			PreyCount: prey, PredCount: pred,
			Cow: prey / 3, Pig: prey / 3, Villager: prey - 2*(prey/3),
			Zombie: pred / 2, Creeper: pred - pred/2,
		}
	}

	if got := computeQuality(nil); got != 0 {
		t.Errorf("quality with no windows = %v", got)
	}

	steady := make([]telemetry.WindowStats, 10)
	for i := range steady {
		steady[i] = window(500, 100)
	}
	q := computeQuality(steady)
	if q < 0.99 || q > 1 {
		t.Errorf("steady balanced ecosystem quality = %v, want ~1", q)
	}

	collapsed := make([]telemetry.WindowStats, 10)
	for i := range collapsed {
		collapsed[i] = window(500, 0)
	}
	if got := computeQuality(collapsed); got != 0 {
		t.Errorf("predator-free quality = %v, want 0", got)
	}
}

func TestComputeFitnessPrefersSurvival(t *testing.T) {
	short := computeFitness(&runResult{survivalSteps: 100})
	long := computeFitness(&runResult{survivalSteps: 1000})
	if long >= short {
		t.Errorf("longer survival scored %v, shorter %v", long, short)
	}
}
