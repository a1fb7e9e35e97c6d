// Package main provides CMA-ES optimization for breeding-policy parameters.
package main

import (
	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Prey and predator values are shared by every species of the kind.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Prey policy
			{Name: "prey_base_prob", Path: "species.<prey>.base_breeding_probability", Min: 0.05, Max: 0.6, Default: 0.27},
			{Name: "prey_capacity", Path: "species.<prey>.carrying_capacity", Min: 400, Max: 3000, Default: 1700},
			{Name: "prey_repop_frac", Path: "species.<prey>.repopulation_threshold", Min: 0.05, Max: 0.9, Default: 400.0 / 1700.0},
			// Predator policy
			{Name: "pred_base_prob", Path: "species.<predator>.base_breeding_probability", Min: 0.02, Max: 0.4, Default: 0.15},
			{Name: "pred_capacity", Path: "species.<predator>.carrying_capacity", Min: 100, Max: 1500, Default: 500},
			{Name: "pred_repop_frac", Path: "species.<predator>.repopulation_threshold", Min: 0.05, Max: 0.9, Default: 0.6},
			// Shared
			{Name: "throttle_factor", Path: "behavior.throttle_factor", Min: 0.05, Max: 0.8, Default: 0.2},
			{Name: "grass_growth", Path: "flora.growth_probability", Min: 0.001, Max: 0.05, Default: 0.007},
			{Name: "grass_food", Path: "flora.food_value", Min: 10, Max: 80, Default: 30},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)

	preyCap := int(c[1])
	predCap := int(c[4])
	for _, species := range components.AnimalSpecies {
		sc := cfg.Species[species.Key()]
		if species.Kind() == components.KindPredator {
			sc.BaseBreedingProbability = c[3]
			sc.CarryingCapacity = predCap
			sc.RepopulationThreshold = int(c[5] * float64(predCap))
		} else {
			sc.BaseBreedingProbability = c[0]
			sc.CarryingCapacity = preyCap
			sc.RepopulationThreshold = int(c[2] * float64(preyCap))
		}
		cfg.Species[species.Key()] = sc
	}

	cfg.Behavior.ThrottleFactor = c[6]
	cfg.Flora.GrowthProbability = c[7]
	cfg.Flora.FoodValue = int(c[8])
}

// ExtractFromConfig extracts current parameter values from a Config struct,
// reading prey values from cows and predator values from zombies.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	prey := cfg.Species[components.SpeciesCow.Key()]
	pred := cfg.Species[components.SpeciesZombie.Key()]
	frac := func(repop, capacity int) float64 {
		if capacity <= 0 {
			return 0
		}
		return float64(repop) / float64(capacity)
	}
	return []float64{
		prey.BaseBreedingProbability,
		float64(prey.CarryingCapacity),
		frac(prey.RepopulationThreshold, prey.CarryingCapacity),
		pred.BaseBreedingProbability,
		float64(pred.CarryingCapacity),
		frac(pred.RepopulationThreshold, pred.CarryingCapacity),
		cfg.Behavior.ThrottleFactor,
		cfg.Flora.GrowthProbability,
		float64(cfg.Flora.FoodValue),
	}
}
