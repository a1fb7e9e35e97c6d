package systems

import (
	"github.com/pthm-cable/mobsim/components"
)

// defaultNocturnalSpawnCap bounds the pending spawn count of a species.
const defaultNocturnalSpawnCap = 400

// NocturnalSpawner counts night kills per species. When day breaks the
// pending count is paid out as new individuals next to living members.
type NocturnalSpawner struct {
	pending map[components.Species]int
	limit   int
}

// NewNocturnalSpawner creates an empty spawner. limit <= 0 selects the default.
func NewNocturnalSpawner(limit int) *NocturnalSpawner {
	if limit <= 0 {
		limit = defaultNocturnalSpawnCap
	}
	return &NocturnalSpawner{
		pending: make(map[components.Species]int),
		limit:   limit,
	}
}

// Record adds one night kill for the species, up to the cap.
func (n *NocturnalSpawner) Record(species components.Species) {
	if n.pending[species] < n.limit {
		n.pending[species]++
	}
}

// Pending returns the night kills not yet paid out.
func (n *NocturnalSpawner) Pending(species components.Species) int {
	return n.pending[species]
}

// Consume subtracts spawned individuals from the pending count.
func (n *NocturnalSpawner) Consume(species components.Species, spawned int) {
	n.pending[species] = max(n.pending[species]-spawned, 0)
}

// Reset clears every pending count.
func (n *NocturnalSpawner) Reset() {
	clear(n.pending)
}

// recordNocturnalKill counts a kill made while the current generation is at
// night.
func recordNocturnalKill(s *Step, d *Descriptor) {
	if s.Spawner == nil || s.Current.TimeOfDay() != components.Night {
		return
	}
	s.Spawner.Record(d.Species)
}

// spawnNocturnal pays out pending night kills once the next generation is
// in daylight. Each spawn picks a random living member of the species in the
// next generation and a random free cell next to it. The individual is
// half-grown and hungry: age in [0, maxAge/2), food in [0, limit/3).
func spawnNocturnal(s *Step, d *Descriptor) {
	if s.Spawner == nil || s.Next.TimeOfDay() != components.Day {
		return
	}
	pending := s.Spawner.Pending(d.Species)
	if pending == 0 {
		return
	}

	arena := s.arena()
	var parents []components.Location
	for _, e := range s.Next.Mobs() {
		if m := arena.Mob(e); m != nil && m.Alive && m.Species == d.Species {
			parents = append(parents, m.Loc)
		}
	}
	if len(parents) == 0 {
		return
	}

	spawned := 0
	for i := 0; i < min(pending, len(parents)); i++ {
		parent := parents[s.Rand.Intn(len(parents))]
		free := s.Next.FreeAdjacentLocations(parent)
		if len(free) == 0 {
			continue
		}
		m := d.NewMob(s.Rand, free[s.Rand.Intn(len(free))], false)
		m.Age = randBelow(s, d.MaxAge/2)
		m.Food = randBelow(s, d.HungerLimit/3)
		if m.Food == 0 {
			m.Food = 1
		}
		if _, ok := s.spawn(m); ok {
			spawned++
			s.recorder().RecordSpawn(d.Species)
		}
	}
	s.Spawner.Consume(d.Species, spawned)
}

func randBelow(s *Step, n int) int {
	if n <= 0 {
		return 0
	}
	return s.Rand.Intn(n)
}

// RunStepHooks invokes every species-wide hook once, in table order.
func RunStepHooks(s *Step) {
	for _, species := range components.AnimalSpecies {
		if d := s.Species.Get(species); d != nil && d.StepHook != nil {
			d.StepHook(s, d)
		}
	}
}
