package session

import "github.com/tomz197/circus/internal/object"

// EventType identifies a session event.
type EventType int

const (
	EventStarted EventType = iota
	EventCaught
	EventLifeLost
	EventLevelUp
	EventGameOver
	EventPaused
	EventResumed
)

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventCaught:
		return "caught"
	case EventLifeLost:
		return "life_lost"
	case EventLevelUp:
		return "level_up"
	case EventGameOver:
		return "game_over"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	default:
		return "unknown"
	}
}

// Event reports a change in the session. Stats hold the values right after
// the change; for EventGameOver, Stats.Score is the final score.
type Event struct {
	Type  EventType
	Tick  uint64
	Stats Stats

	// Entity is set for EventCaught and EventLifeLost.
	Entity *object.FallingEntity
}

// EventHandler receives events after the call that produced them has
// finished mutating the session.
type EventHandler func(Event)
