package session

import (
	"github.com/tomz197/circus/internal/object"
)

// Phase is the lifecycle stage of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Stats is the scoring state of a run.
type Stats struct {
	Score           int
	Lives           int
	Level           int
	SpeedMultiplier float64
}

// Snapshot is a read-only copy of the session for rendering.
// Nothing in it aliases session memory.
type Snapshot struct {
	Tick          uint64
	Phase         Phase
	Screen        object.Screen
	Player        object.Performer
	Entities      []object.FallingEntity
	Stats         Stats
	SpawnTimer    int
	SpawnInterval float64
}
