package session

import "github.com/tomz197/circus/internal/loop/config"

// LevelFor returns the level reached at score: one level per step points,
// starting at 1.
func LevelFor(score, step int) int {
	if score < 0 {
		score = 0
	}
	return score/step + 1
}

// SpeedMultiplierFor returns the difficulty multiplier for a level.
func SpeedMultiplierFor(level int, step float64) float64 {
	return 1 + float64(level-1)*step
}

func newStats(t config.Tuning) Stats {
	return Stats{
		Lives:           t.Lives,
		Level:           1,
		SpeedMultiplier: 1,
	}
}

// collect adds points and recomputes difficulty. Reports whether the level rose.
func (s *Stats) collect(points int, d config.DifficultyTuning) bool {
	s.Score += points
	level := LevelFor(s.Score, d.LevelStep)
	if level == s.Level {
		return false
	}
	s.Level = level
	s.SpeedMultiplier = SpeedMultiplierFor(level, d.SpeedStep)
	return true
}

// hit takes a life. Reports whether none are left.
func (s *Stats) hit() bool {
	if s.Lives > 0 {
		s.Lives--
	}
	return s.Lives == 0
}
