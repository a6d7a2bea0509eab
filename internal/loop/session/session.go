// Package session runs a single game of catch: one performer, the falling
// entities, scoring, difficulty and the run lifecycle.
//
// A Session is not safe for concurrent use. Front-ends drive it from one
// goroutine and hand Snapshots to renderers.
package session

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/circus/internal/loop/config"
	"github.com/tomz197/circus/internal/object"
	"github.com/tomz197/circus/internal/physics"
)

// DefaultScreen is the viewport used until the first Resize.
var DefaultScreen = object.Screen{Width: 800, Height: 600}

// Session owns all mutable state of one game.
type Session struct {
	tuning  config.Tuning
	pending *config.Tuning // Applied at the next Start or Restart

	rng     object.Rand
	logger  *log.Logger
	onEvent EventHandler

	screen   object.Screen
	player   object.Performer
	entities []object.FallingEntity
	spare    []object.FallingEntity // Backing array for the next generation
	spawner  *object.Spawner
	stats    Stats
	phase    Phase
	intent   float64
	tick     uint64
	nextID   uint64

	events []Event
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used for spawning.
func WithRand(rng object.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithEventHandler registers fn to receive session events.
func WithEventHandler(fn EventHandler) Option {
	return func(s *Session) {
		s.onEvent = fn
	}
}

// WithLogger sets the logger. Sessions are silent by default.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithScreen sets the initial viewport.
func WithScreen(screen object.Screen) Option {
	return func(s *Session) {
		s.screen = screen
	}
}

// New creates an idle session.
func New(t config.Tuning, opts ...Option) (*Session, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s := &Session{
		tuning: t,
		screen: DefaultScreen,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.screen = sanitizeScreen(s.screen)
	s.reset()
	return s, nil
}

// SetTuning stages t for the next Start or Restart. A run in progress keeps
// its tuning.
func (s *Session) SetTuning(t config.Tuning) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.pending = &t
	return nil
}

// Tuning returns the tuning of the current run.
func (s *Session) Tuning() config.Tuning {
	return s.tuning
}

// Phase returns the lifecycle stage.
func (s *Session) Phase() Phase {
	return s.phase
}

// Stats returns the current score, lives and difficulty.
func (s *Session) Stats() Stats {
	return s.stats
}

// Start begins the first run. It has no effect unless the session is idle.
func (s *Session) Start() {
	if s.phase != PhaseIdle {
		return
	}
	s.begin()
}

// Restart discards the current run and begins a new one. Valid while paused
// or after game over; ignored otherwise.
func (s *Session) Restart() {
	if s.phase != PhasePaused && s.phase != PhaseGameOver {
		return
	}
	s.begin()
}

// Pause freezes a running session.
func (s *Session) Pause() {
	if s.phase != PhaseRunning {
		return
	}
	s.phase = PhasePaused
	s.queue(EventPaused, nil)
	s.flush()
}

// Resume continues a paused session.
func (s *Session) Resume() {
	if s.phase != PhasePaused {
		return
	}
	s.phase = PhaseRunning
	s.queue(EventResumed, nil)
	s.flush()
}

// SetMoveIntent records the horizontal input used by the following ticks.
// Values are clamped to [-1, 1]; NaN counts as no input.
func (s *Session) SetMoveIntent(intent float64) {
	s.intent = physics.ClampUnit(intent)
}

// Resize sets the viewport and re-clamps the performer into it. Negative
// or NaN dimensions are treated as zero.
func (s *Session) Resize(width, height float64) {
	s.screen = sanitizeScreen(object.Screen{Width: width, Height: height})
	s.player.Fit(s.screen)
}

// Step sets the move intent and advances one tick.
func (s *Session) Step(intent float64) {
	s.SetMoveIntent(intent)
	s.Tick()
}

// Tick advances the simulation by one fixed step: move the performer, advance
// entities, spawn, resolve collisions, then drop entities that left the
// screen. Ticks outside the running phase do nothing.
func (s *Session) Tick() {
	if s.phase != PhaseRunning {
		return
	}
	s.tick++

	s.player.Move(s.intent, s.screen)

	spin := s.tuning.Entities.SpinStep
	for i := range s.entities {
		s.entities[i].Advance(spin)
	}

	if e, ok := s.spawner.Tick(s.stats.SpeedMultiplier, s.screen, s.rng); ok {
		s.nextID++
		e.ID = s.nextID
		s.entities = append(s.entities, e)
	}

	lost := s.resolveCollisions()
	s.pruneExited()

	if lost {
		s.phase = PhaseGameOver
		s.queue(EventGameOver, nil)
		s.logger.Info("game over", "score", s.stats.Score, "level", s.stats.Level, "ticks", s.tick)
	}
	s.flush()
}

// Snapshot copies the session state for rendering.
func (s *Session) Snapshot() Snapshot {
	entities := make([]object.FallingEntity, len(s.entities))
	copy(entities, s.entities)
	return Snapshot{
		Tick:          s.tick,
		Phase:         s.phase,
		Screen:        s.screen,
		Player:        s.player,
		Entities:      entities,
		Stats:         s.stats,
		SpawnTimer:    s.spawner.Timer(),
		SpawnInterval: s.spawner.Interval(s.stats.SpeedMultiplier),
	}
}

func (s *Session) begin() {
	s.reset()
	s.phase = PhaseRunning
	s.queue(EventStarted, nil)
	s.logger.Debug("run started", "lives", s.stats.Lives, "width", s.screen.Width, "height", s.screen.Height)
	s.flush()
}

// reset returns the world to its initial state without changing the phase.
func (s *Session) reset() {
	if s.pending != nil {
		s.tuning = *s.pending
		s.pending = nil
	}
	s.spawner = object.NewSpawner(s.tuning.Spawn, s.tuning.Entities)
	s.player = object.NewPerformer(s.tuning.Player, s.screen)
	s.entities = s.entities[:0]
	s.stats = newStats(s.tuning)
	s.intent = 0
	s.tick = 0
}

func (s *Session) queue(t EventType, e *object.FallingEntity) {
	s.events = append(s.events, Event{
		Type:   t,
		Tick:   s.tick,
		Stats:  s.stats,
		Entity: e,
	})
}

// flush delivers queued events once the session is consistent again.
func (s *Session) flush() {
	if len(s.events) == 0 {
		return
	}
	events := s.events
	s.events = nil
	if s.onEvent == nil {
		return
	}
	for _, ev := range events {
		s.onEvent(ev)
	}
}

func sanitizeScreen(screen object.Screen) object.Screen {
	return object.Screen{
		Width:  nonNegative(screen.Width),
		Height: nonNegative(screen.Height),
	}
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
