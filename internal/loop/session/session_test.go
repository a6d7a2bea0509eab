package session

import (
	"math"
	"math/rand"
	"testing"

	"github.com/tomz197/circus/internal/loop/config"
	"github.com/tomz197/circus/internal/object"
)

type recorder struct {
	events []Event
}

func (r *recorder) handle(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func newTestSession(t *testing.T, tuning config.Tuning, opts ...Option) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithRand(rand.New(rand.NewSource(1))), WithEventHandler(rec.handle)}, opts...)
	s, err := New(tuning, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, rec
}

// inject places a motionless entity at x, y and returns its id.
func inject(s *Session, id object.KindID, x, y float64) uint64 {
	kind, _ := object.KindOf(id)
	s.nextID++
	s.entities = append(s.entities, object.FallingEntity{
		ID:     s.nextID,
		Kind:   kind,
		X:      x,
		Y:      y,
		Width:  s.tuning.Entities.Size,
		Height: s.tuning.Entities.Size,
	})
	return s.nextID
}

// dropOnPlayer places a motionless entity inside the performer's box.
func dropOnPlayer(s *Session, id object.KindID) uint64 {
	return inject(s, id, s.player.X+10, s.player.Y+10)
}

func hasEntity(snap Snapshot, id uint64) bool {
	for _, e := range snap.Entities {
		if e.ID == id {
			return true
		}
	}
	return false
}

func TestNewRejectsInvalidTuning(t *testing.T) {
	bad := config.DefaultTuning()
	bad.Lives = 0
	if _, err := New(bad); err == nil {
		t.Fatalf("expected error for zero lives")
	}
}

func TestLifecycle(t *testing.T) {
	s, rec := newTestSession(t, config.DefaultTuning())

	if s.Phase() != PhaseIdle {
		t.Fatalf("phase = %v, want idle", s.Phase())
	}
	s.Tick()
	if s.Snapshot().Tick != 0 {
		t.Fatalf("idle session ticked")
	}

	s.Restart()
	if s.Phase() != PhaseIdle {
		t.Fatalf("Restart from idle should be ignored, phase = %v", s.Phase())
	}

	s.Start()
	if s.Phase() != PhaseRunning {
		t.Fatalf("phase after Start = %v, want running", s.Phase())
	}
	st := s.Stats()
	if st.Score != 0 || st.Lives != 3 || st.Level != 1 || st.SpeedMultiplier != 1 {
		t.Fatalf("initial stats = %+v", st)
	}

	s.Tick()
	s.Start()
	s.Restart()
	if got := s.Snapshot().Tick; got != 1 {
		t.Fatalf("Start/Restart while running should be ignored, tick = %d", got)
	}

	s.Pause()
	before := s.Snapshot()
	s.Tick()
	if after := s.Snapshot(); after.Tick != before.Tick {
		t.Fatalf("paused session ticked")
	}
	s.Resume()
	s.Tick()
	if got := s.Snapshot().Tick; got != 2 {
		t.Fatalf("tick after resume = %d, want 2", got)
	}

	want := []EventType{EventStarted, EventPaused, EventResumed}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i, e := range rec.events {
		if e.Type != want[i] {
			t.Fatalf("event %d = %v, want %v", i, e.Type, want[i])
		}
	}
}

func TestCatchRaisesScoreAndLevel(t *testing.T) {
	s, rec := newTestSession(t, config.DefaultTuning())
	s.Start()

	for range 5 {
		dropOnPlayer(s, object.KindBall)
		s.Tick()
	}
	if st := s.Stats(); st.Score != 50 || st.Level != 1 {
		t.Fatalf("after 5 balls: %+v, want score 50 level 1", st)
	}

	dropOnPlayer(s, object.KindBall)
	s.Tick()
	if st := s.Stats(); st.Score != 60 || st.Level != 1 || st.SpeedMultiplier != 1 {
		t.Fatalf("after 6 balls: %+v, want score 60 level 1", st)
	}

	for range 4 {
		dropOnPlayer(s, object.KindBall)
		s.Tick()
	}
	st := s.Stats()
	if st.Score != 100 || st.Level != 2 || st.SpeedMultiplier != 1.5 {
		t.Fatalf("after 10 balls: %+v, want score 100 level 2 multiplier 1.5", st)
	}
	if st.Lives != 3 {
		t.Fatalf("catching points must not cost lives, lives = %d", st.Lives)
	}
	if got := rec.count(EventCaught); got != 10 {
		t.Fatalf("caught events = %d, want 10", got)
	}
	if got := rec.count(EventLevelUp); got != 1 {
		t.Fatalf("level up events = %d, want 1", got)
	}
	if got := s.Snapshot().SpawnInterval; got != 80 {
		t.Fatalf("spawn interval at level 2 = %v, want 80", got)
	}
}

func TestCaughtEntityIsRemoved(t *testing.T) {
	s, _ := newTestSession(t, config.DefaultTuning())
	s.Start()

	id := dropOnPlayer(s, object.KindStar)
	s.Tick()
	if hasEntity(s.Snapshot(), id) {
		t.Fatalf("caught entity still in play")
	}
	if got := s.Stats().Score; got != 20 {
		t.Fatalf("score = %d, want 20", got)
	}
}

func TestThreeHazardsEndTheRun(t *testing.T) {
	s, rec := newTestSession(t, config.DefaultTuning())
	s.Start()

	dropOnPlayer(s, object.KindPin)
	s.Tick()

	for i, wantLives := range []int{2, 1, 0} {
		dropOnPlayer(s, object.KindBomb)
		s.Tick()
		if got := s.Stats().Lives; got != wantLives {
			t.Fatalf("hazard %d: lives = %d, want %d", i+1, got, wantLives)
		}
		if got := s.Stats().Score; got != 25 {
			t.Fatalf("hazard %d changed score to %d", i+1, got)
		}
	}

	if s.Phase() != PhaseGameOver {
		t.Fatalf("phase = %v, want game over", s.Phase())
	}
	if got := rec.count(EventGameOver); got != 1 {
		t.Fatalf("game over events = %d, want 1", got)
	}
	last := rec.events[len(rec.events)-1]
	if last.Type != EventGameOver || last.Stats.Score != 25 {
		t.Fatalf("last event = %+v, want game over with score 25", last)
	}

	tick := s.Snapshot().Tick
	s.Tick()
	if s.Snapshot().Tick != tick {
		t.Fatalf("ticked after game over")
	}
}

func TestGameOverStopsEffectsWithinTick(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.Lives = 1
	s, rec := newTestSession(t, tuning)
	s.Start()

	dropOnPlayer(s, object.KindCannonball)
	bomb := dropOnPlayer(s, object.KindBomb)
	ball := dropOnPlayer(s, object.KindBall)
	s.Tick()

	st := s.Stats()
	if st.Lives != 0 || st.Score != 0 {
		t.Fatalf("stats = %+v, want lives 0 score 0", st)
	}
	if s.Phase() != PhaseGameOver {
		t.Fatalf("phase = %v, want game over", s.Phase())
	}
	snap := s.Snapshot()
	if !hasEntity(snap, bomb) || !hasEntity(snap, ball) {
		t.Fatalf("entities after the losing hit should stay unresolved")
	}
	if got := rec.count(EventLifeLost); got != 1 {
		t.Fatalf("life lost events = %d, want 1", got)
	}
}

func TestEntityLeavesScreenWithoutEffect(t *testing.T) {
	s, _ := newTestSession(t, config.DefaultTuning(), WithScreen(object.Screen{Width: 800, Height: 800}))
	s.Start()

	id := inject(s, object.KindBomb, 0, -40)
	s.entities[len(s.entities)-1].Speed = 3

	for range 280 {
		s.Tick()
	}
	if !hasEntity(s.Snapshot(), id) {
		t.Fatalf("entity removed before passing the bottom edge")
	}
	s.Tick()
	if hasEntity(s.Snapshot(), id) {
		t.Fatalf("entity still present after tick 281")
	}
	if st := s.Stats(); st.Score != 0 || st.Lives != 3 {
		t.Fatalf("leaving the screen changed stats: %+v", st)
	}
}

func TestTouchingEdgesDoNotCollide(t *testing.T) {
	s, _ := newTestSession(t, config.DefaultTuning())
	s.Start()

	p := s.player
	right := inject(s, object.KindBomb, p.X+p.Width, p.Y)
	above := inject(s, object.KindBomb, p.X, p.Y-s.tuning.Entities.Size)
	s.Tick()

	snap := s.Snapshot()
	if !hasEntity(snap, right) || !hasEntity(snap, above) {
		t.Fatalf("edge-touching entities were resolved")
	}
	if got := s.Stats().Lives; got != 3 {
		t.Fatalf("lives = %d, want 3", got)
	}
}

func TestMoveIntent(t *testing.T) {
	s, _ := newTestSession(t, config.DefaultTuning())
	s.Start()
	x := s.player.X

	s.Step(5)
	if got := s.player.X; got != x+5 {
		t.Fatalf("x after intent 5 = %v, want %v", got, x+5)
	}
	s.Step(math.NaN())
	if got := s.player.X; got != x+5 {
		t.Fatalf("NaN intent moved the performer to %v", got)
	}
	s.Step(-0.5)
	if got := s.player.X; got != x+2.5 {
		t.Fatalf("x after intent -0.5 = %v, want %v", got, x+2.5)
	}
}

func TestPerformerStaysOnScreen(t *testing.T) {
	s, _ := newTestSession(t, config.DefaultTuning())
	s.Start()
	rng := rand.New(rand.NewSource(7))
	intents := []float64{-1, 1, -5, 5, 0.3, math.NaN(), math.Inf(1)}

	for i := range 3000 {
		if i%250 == 0 {
			s.Resize(100+rng.Float64()*900, 100+rng.Float64()*700)
		}
		s.Step(intents[rng.Intn(len(intents))])
		if s.Phase() == PhaseGameOver {
			s.Restart()
		}

		snap := s.Snapshot()
		p := snap.Player
		if p.X < 0 || p.X > snap.Screen.Width-p.Width {
			t.Fatalf("tick %d: x = %v outside [0, %v]", i, p.X, snap.Screen.Width-p.Width)
		}
		if p.Y < 0 || p.Y > snap.Screen.Height-p.Height {
			t.Fatalf("tick %d: y = %v outside [0, %v]", i, p.Y, snap.Screen.Height-p.Height)
		}
	}
}

func TestRunInvariants(t *testing.T) {
	tuning := config.DefaultTuning()
	s, rec := newTestSession(t, tuning)
	s.Start()
	rng := rand.New(rand.NewSource(42))

	removed := map[uint64]bool{}
	prev := s.Snapshot()

	for i := range 20000 {
		rec.events = rec.events[:0]
		s.Step(rng.Float64()*2 - 1)
		snap := s.Snapshot()
		st := snap.Stats

		if snap.Tick == 1 {
			// A new run started; compare against a fresh baseline.
			prev = Snapshot{Stats: newStats(tuning)}
			removed = map[uint64]bool{}
		}

		if st.Score < prev.Stats.Score {
			t.Fatalf("tick %d: score decreased %d -> %d", i, prev.Stats.Score, st.Score)
		}
		if st.Lives < 0 || st.Lives > tuning.Lives {
			t.Fatalf("tick %d: lives %d out of range", i, st.Lives)
		}
		if lost := prev.Stats.Lives - st.Lives; lost != rec.count(EventLifeLost) {
			t.Fatalf("tick %d: lives dropped by %d with %d hazard hits", i, lost, rec.count(EventLifeLost))
		}
		if want := LevelFor(st.Score, tuning.Difficulty.LevelStep); st.Level != want {
			t.Fatalf("tick %d: level %d, want %d", i, st.Level, want)
		}
		if want := SpeedMultiplierFor(st.Level, tuning.Difficulty.SpeedStep); st.SpeedMultiplier != want {
			t.Fatalf("tick %d: multiplier %v, want %v", i, st.SpeedMultiplier, want)
		}

		seen := map[uint64]bool{}
		for _, e := range snap.Entities {
			if seen[e.ID] {
				t.Fatalf("tick %d: entity %d present twice", i, e.ID)
			}
			if removed[e.ID] {
				t.Fatalf("tick %d: entity %d came back after removal", i, e.ID)
			}
			seen[e.ID] = true
		}
		for _, e := range prev.Entities {
			if !seen[e.ID] {
				removed[e.ID] = true
			}
		}

		prev = snap
		if s.Phase() == PhaseGameOver {
			s.Restart()
		}
	}
}

func TestSpawnCadence(t *testing.T) {
	s, _ := newTestSession(t, config.DefaultTuning())
	s.Start()

	for range 119 {
		s.Tick()
	}
	if n := len(s.Snapshot().Entities); n != 0 {
		t.Fatalf("%d entities before the first interval", n)
	}
	s.Tick()
	snap := s.Snapshot()
	if len(snap.Entities) != 1 {
		t.Fatalf("entities after 120 ticks = %d, want 1", len(snap.Entities))
	}
	e := snap.Entities[0]
	if e.ID != 1 || e.Y != -40 || e.Speed != 3 {
		t.Fatalf("spawned entity = %+v, want id 1 at y -40 with speed 3", e)
	}
	if e.X < 20 || e.X > snap.Screen.Width-40 {
		t.Fatalf("spawn x %v outside [20, %v]", e.X, snap.Screen.Width-40)
	}
	if snap.SpawnTimer != 0 {
		t.Fatalf("spawn timer = %d, want 0 after spawning", snap.SpawnTimer)
	}
}

func TestRestartAppliesStagedTuning(t *testing.T) {
	s, _ := newTestSession(t, config.DefaultTuning())
	s.Start()

	next := config.DefaultTuning()
	next.Lives = 5
	if err := s.SetTuning(next); err != nil {
		t.Fatalf("SetTuning: %v", err)
	}
	if got := s.Stats().Lives; got != 3 {
		t.Fatalf("staged tuning leaked into the running game, lives = %d", got)
	}

	dropOnPlayer(s, object.KindBall)
	s.Tick()
	s.Pause()
	s.Restart()

	st := s.Stats()
	if st.Lives != 5 || st.Score != 0 {
		t.Fatalf("stats after restart = %+v, want lives 5 score 0", st)
	}
	if len(s.Snapshot().Entities) != 0 {
		t.Fatalf("restart kept old entities")
	}

	bad := next
	bad.Difficulty.LevelStep = 0
	if err := s.SetTuning(bad); err == nil {
		t.Fatalf("expected error for zero level step")
	}
}

func TestResizeReclampsPerformer(t *testing.T) {
	s, _ := newTestSession(t, config.DefaultTuning())
	s.Start()
	for range 200 {
		s.Step(1)
	}
	if got, want := s.player.X, 800-s.player.Width; got != want {
		t.Fatalf("x at right wall = %v, want %v", got, want)
	}

	s.Resize(300, 400)
	if got, want := s.player.X, 300-s.player.Width; got != want {
		t.Fatalf("x after shrink = %v, want %v", got, want)
	}
	if got, want := s.player.Y, 400-s.tuning.Player.Baseline; got != want {
		t.Fatalf("y after shrink = %v, want %v", got, want)
	}

	s.Resize(-10, math.NaN())
	if snap := s.Snapshot(); snap.Screen.Width != 0 || snap.Screen.Height != 0 {
		t.Fatalf("screen = %+v, want zero", snap.Screen)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := newTestSession(t, config.DefaultTuning())
	s.Start()
	inject(s, object.KindBall, 0, 0)

	snap := s.Snapshot()
	snap.Entities[0].Y = 999
	snap.Player.X = -1
	if s.entities[0].Y == 999 || s.player.X == -1 {
		t.Fatalf("snapshot aliases session state")
	}
}

func TestLevelFormulas(t *testing.T) {
	tests := []struct {
		score int
		level int
		mult  float64
	}{
		{0, 1, 1},
		{99, 1, 1},
		{100, 2, 1.5},
		{250, 3, 2},
		{1000, 11, 6},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.score, 100); got != tt.level {
			t.Errorf("LevelFor(%d) = %d, want %d", tt.score, got, tt.level)
		}
		if got := SpeedMultiplierFor(tt.level, 0.5); got != tt.mult {
			t.Errorf("SpeedMultiplierFor(%d) = %v, want %v", tt.level, got, tt.mult)
		}
	}
}
