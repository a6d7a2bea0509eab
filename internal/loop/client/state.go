package client

import (
	"time"

	"github.com/tomz197/circus/internal/input"
	"github.com/tomz197/circus/internal/loop/session"
	"github.com/tomz197/circus/internal/object"
)

// GameState represents the screen a client is showing.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen
	GameStatePlaying                   // Active gameplay
	GameStatePaused                    // Run frozen, waiting to resume
	GameStateOver                      // Out of lives, show restart prompt
	GameStateShutdown                  // Server is shutting down
)

// gameStateFor maps a session phase to the screen that presents it.
func gameStateFor(p session.Phase) GameState {
	switch p {
	case session.PhaseRunning:
		return GameStatePlaying
	case session.PhasePaused:
		return GameStatePaused
	case session.PhaseGameOver:
		return GameStateOver
	default:
		return GameStateStart
	}
}

// ClientState holds per-connection presentation state. Simulation state
// lives in the session.
type ClientState struct {
	Input         input.Input
	GameState     GameState     // Screen shown this frame
	prevGameState GameState     // Screen shown last frame
	Running       bool          // Client loop running
	BestScore     int           // Best final score on this connection
	LastScore     int           // Final score of the last finished run
	delta         time.Duration // Frame delta time
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state
	wasInactive   bool
	particles     []*object.Particle // Catch sparkles, visual only
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState:     GameStateStart,
		prevGameState: GameStateStart,
		Running:       true,
	}
}

// updateParticles advances sparkles and recycles the expired ones.
func (s *ClientState) updateParticles(dt float64) {
	kept := s.particles[:0]
	for _, p := range s.particles {
		if p.Update(dt) {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(s.particles[len(kept):])
	s.particles = kept
}

// clearParticles recycles every sparkle.
func (s *ClientState) clearParticles() {
	for _, p := range s.particles {
		p.Release()
	}
	clear(s.particles)
	s.particles = s.particles[:0]
}
