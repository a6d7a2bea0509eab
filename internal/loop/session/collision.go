package session

import (
	"github.com/tomz197/circus/internal/object"
	"github.com/tomz197/circus/internal/physics"
)

// resolveCollisions applies every entity overlapping the performer and drops
// it from the next generation. Once the last life is lost no further effects
// apply this tick; the remaining entities survive untouched.
// Reports whether the run was lost.
func (s *Session) resolveCollisions() bool {
	player := s.player.Bounds()
	lost := false

	next := s.spare[:0]
	for i := range s.entities {
		e := &s.entities[i]
		if lost || !physics.Intersects(player, e.Bounds()) {
			next = append(next, *e)
			continue
		}

		caught := *e
		if e.Hazard() {
			lost = s.stats.hit()
			s.queue(EventLifeLost, &caught)
			continue
		}
		leveled := s.stats.collect(e.Points(), s.tuning.Difficulty)
		s.queue(EventCaught, &caught)
		if leveled {
			s.queue(EventLevelUp, nil)
		}
	}
	s.swap(next)
	return lost
}

// pruneExited drops entities that fell past the bottom edge. They have no
// effect on score or lives.
func (s *Session) pruneExited() {
	next := s.spare[:0]
	for i := range s.entities {
		if s.entities[i].Exited(s.screen) {
			continue
		}
		next = append(next, s.entities[i])
	}
	s.swap(next)
}

// swap installs next as the live generation and recycles the old backing array.
func (s *Session) swap(next []object.FallingEntity) {
	s.entities, s.spare = next, s.entities[:0]
}
