package systems

import (
	"math/rand"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/field"
)

// defaultThrottleFactor scales the base probability between the
// repopulation threshold and carrying capacity.
const defaultThrottleFactor = 0.2

// PolicyEntry is the population-control state of one species.
type PolicyEntry struct {
	CarryingCapacity      int
	RepopulationThreshold int
	BaseProbability       float64

	// Blocked is set once population reaches capacity and stays set until
	// population falls to the repopulation threshold.
	Blocked bool
	// Population is the count observed at the last Refresh.
	Population int
}

// BlockChange reports a species whose block flag flipped during Refresh.
type BlockChange struct {
	Species    components.Species
	Blocked    bool
	Population int
}

// BreedingPolicy regulates breeding per species. It is refreshed once per
// step from the generation being read, then only read while mobs act.
type BreedingPolicy struct {
	entries  map[components.Species]*PolicyEntry
	throttle float64
}

// NewBreedingPolicy creates a policy with the limits from the species table.
// throttle <= 0 selects the default throttle factor.
func NewBreedingPolicy(table SpeciesTable, throttle float64) *BreedingPolicy {
	if throttle <= 0 {
		throttle = defaultThrottleFactor
	}
	p := &BreedingPolicy{
		entries:  make(map[components.Species]*PolicyEntry, len(table)),
		throttle: throttle,
	}
	for species, d := range table {
		p.SetLimits(species, d.CarryingCapacity, d.RepopulationThreshold, d.BaseBreedingProbability)
	}
	return p
}

// SetLimits installs or replaces the limits of a species and clears its block.
func (p *BreedingPolicy) SetLimits(species components.Species, capacity, repopulation int, base float64) {
	p.entries[species] = &PolicyEntry{
		CarryingCapacity:      capacity,
		RepopulationThreshold: repopulation,
		BaseProbability:       base,
	}
}

// Entry returns a copy of the species state.
func (p *BreedingPolicy) Entry(species components.Species) (PolicyEntry, bool) {
	e, ok := p.entries[species]
	if !ok {
		return PolicyEntry{}, false
	}
	return *e, true
}

// Refresh recounts every species in f and updates the sticky block flags.
// Returns the species whose flag changed.
func (p *BreedingPolicy) Refresh(f *field.Field) []BlockChange {
	var changes []BlockChange
	for _, species := range components.AnimalSpecies {
		e, ok := p.entries[species]
		if !ok {
			continue
		}
		e.Population = f.Population(species)

		blocked := e.Blocked
		if e.Population >= e.CarryingCapacity {
			blocked = true
		} else if e.Population <= e.RepopulationThreshold {
			blocked = false
		}
		if blocked != e.Blocked {
			e.Blocked = blocked
			changes = append(changes, BlockChange{Species: species, Blocked: blocked, Population: e.Population})
		}
	}
	return changes
}

// Probability returns the breeding probability for a population:
// zero at or above capacity, base * throttle above the repopulation
// threshold, and base * (1 - population/capacity) otherwise.
func (p *BreedingPolicy) Probability(species components.Species, population int) float64 {
	e, ok := p.entries[species]
	if !ok || e.CarryingCapacity <= 0 {
		return 0
	}
	if population >= e.CarryingCapacity {
		return 0
	}
	if population > e.RepopulationThreshold {
		return e.BaseProbability * p.throttle
	}
	return e.BaseProbability * (1 - float64(population)/float64(e.CarryingCapacity))
}

// BreedingProbability is Probability at the population seen by the last Refresh.
func (p *BreedingPolicy) BreedingProbability(species components.Species) float64 {
	e, ok := p.entries[species]
	if !ok {
		return 0
	}
	return p.Probability(species, e.Population)
}

// Blocked reports the sticky block flag of the species.
func (p *BreedingPolicy) Blocked(species components.Species) bool {
	e, ok := p.entries[species]
	return ok && e.Blocked
}

// CanBreed draws once against the current breeding probability. A blocked
// species or a zero probability never breeds, whatever the draw.
func (p *BreedingPolicy) CanBreed(species components.Species, rng *rand.Rand) bool {
	if p.Blocked(species) {
		return false
	}
	prob := p.BreedingProbability(species)
	if prob <= 0 {
		return false
	}
	return rng.Float64() <= prob
}
