package object

import (
	"math"

	"github.com/tomz197/circus/internal/loop/config"
)

// Spawner drops new entities on a cadence that tightens with difficulty.
type Spawner struct {
	timer       int
	interval    int
	minInterval int

	margin    float64
	offset    float64
	size      float64
	fallSpeed float64
}

// NewSpawner creates a spawner with an empty timer.
func NewSpawner(spawn config.SpawnTuning, entities config.EntityTuning) *Spawner {
	return &Spawner{
		interval:    spawn.Interval,
		minInterval: spawn.MinInterval,
		margin:      spawn.Margin,
		offset:      spawn.Offset,
		size:        entities.Size,
		fallSpeed:   entities.FallSpeed,
	}
}

// Timer returns the ticks counted since the last spawn.
func (s *Spawner) Timer() int {
	return s.timer
}

// Reset clears the timer.
func (s *Spawner) Reset() {
	s.timer = 0
}

// Interval returns the ticks between spawns at the given speed multiplier:
// the base interval divided by the multiplier, never below the floor.
func (s *Spawner) Interval(speedMultiplier float64) float64 {
	if speedMultiplier < 1 || math.IsNaN(speedMultiplier) {
		speedMultiplier = 1
	}
	return math.Max(float64(s.minInterval), float64(s.interval)/speedMultiplier)
}

// FallSpeed returns the speed given to entities spawned at the multiplier.
func (s *Spawner) FallSpeed(speedMultiplier float64) float64 {
	return s.fallSpeed + (speedMultiplier - 1)
}

// Tick advances the timer and returns a new entity when the interval has
// elapsed. At most one entity is produced per call. When the screen is too
// narrow to hold an entity the spawn is skipped but the timer still resets.
func (s *Spawner) Tick(speedMultiplier float64, screen Screen, rng Rand) (FallingEntity, bool) {
	s.timer++
	if float64(s.timer) < s.Interval(speedMultiplier) {
		return FallingEntity{}, false
	}
	s.timer = 0

	usable := screen.Width - 2*s.margin
	if usable < s.size {
		return FallingEntity{}, false
	}

	kind := PickRandomKind(rng)
	// x is uniform in [margin, width - 2*margin].
	x := s.margin + rng.Float64()*(screen.Width-3*s.margin)

	return FallingEntity{
		Kind:   kind,
		X:      x,
		Y:      -s.offset,
		Width:  s.size,
		Height: s.size,
		Speed:  s.FallSpeed(speedMultiplier),
	}, true
}
