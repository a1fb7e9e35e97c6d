package systems

import (
	"github.com/pthm-cable/mobsim/components"
)

// FindBestMove picks the free cell farthest from here by Manhattan distance.
// Ties go to the first candidate in the given order, which callers shuffle.
// Falls back to a uniformly random candidate when no cell improves on zero.
func FindBestMove(s *Step, here components.Location, free []components.Location) (components.Location, bool) {
	if len(free) == 0 {
		return components.Location{}, false
	}
	best := -1
	bestDist := 0
	for i, loc := range free {
		if d := here.Manhattan(loc); d > bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return free[s.Rand.Intn(len(free))], true
	}
	return free[best], true
}
