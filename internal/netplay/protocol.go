// Package netplay serves the game to browsers over a websocket. Each
// connection plays its own session on the server; the page only renders
// state and reports input.
package netplay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tomz197/circus/internal/loop/session"
	"github.com/tomz197/circus/internal/object"
)

// ProtocolVersion is echoed in welcome; clients sending another version are refused.
const ProtocolVersion = 1

// Client to server.
const (
	MsgHello   = "hello"
	MsgInput   = "input"
	MsgStart   = "start"
	MsgPause   = "pause"
	MsgResume  = "resume"
	MsgRestart = "restart"
	MsgResize  = "resize"
)

// Server to client.
const (
	MsgWelcome = "welcome"
	MsgState   = "state"
	MsgEvent   = "event"
	MsgError   = "error"
)

// EventShutdown is sent as an event type when the host is going down.
const EventShutdown = "shutdown"

// Envelope wraps every message: t names the type, p carries the payload.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

type Hello struct {
	V    int    `json:"v"`
	Name string `json:"name,omitempty"`
}

type Input struct {
	Intent float64 `json:"intent"` // -1..1, negative is left
}

type Resize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type KindInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Points int    `json:"points"`
	Hazard bool   `json:"hazard"`
}

type Welcome struct {
	V           int        `json:"v"`
	ID          int        `json:"id"`
	TickHz      int        `json:"tickHz"`
	BroadcastHz int        `json:"broadcastHz"`
	Kinds       []KindInfo `json:"kinds"`
}

type PlayerState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type EntityState struct {
	ID   uint64  `json:"id"`
	Kind int     `json:"k"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
	Rot  float64 `json:"r"`
}

type State struct {
	Tick     uint64        `json:"tick"`
	Phase    string        `json:"phase"`
	W        float64       `json:"w"`
	H        float64       `json:"h"`
	Player   PlayerState   `json:"player"`
	Entities []EntityState `json:"entities"`
	Score    int           `json:"score"`
	Lives    int           `json:"lives"`
	Level    int           `json:"level"`
	Speed    float64       `json:"speed"`
}

type Event struct {
	Type  string  `json:"type"`
	Score int     `json:"score"`
	Lives int     `json:"lives"`
	Level int     `json:"level"`
	Kind  string  `json:"kind,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
}

type Error struct {
	Message string `json:"message"`
}

// Encode builds an envelope of type t. A nil payload is omitted.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, errors.New("encode: empty message type")
	}
	e := Envelope{T: t}
	if payload != nil {
		pb, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t, err)
		}
		e.P = pb
	}
	return json.Marshal(e)
}

// DecodeEnvelope parses the outer envelope of a message.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errors.New("decode: empty message")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode: %w", err)
	}
	if e.T == "" {
		return Envelope{}, errors.New("decode: missing message type")
	}
	return e, nil
}

// DecodePayload parses the payload of env as T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("decode %s: empty payload", env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", env.T, err)
	}
	return out, nil
}

// Kinds lists the catalog for the welcome message.
func Kinds() []KindInfo {
	catalog := object.Catalog()
	kinds := make([]KindInfo, len(catalog))
	for i, k := range catalog {
		kinds[i] = KindInfo{
			ID:     int(k.ID),
			Name:   k.Name,
			Color:  fmt.Sprintf("#%06x", uint32(k.Color)),
			Points: k.Points,
			Hazard: k.Hazard,
		}
	}
	return kinds
}

// StateFromSnapshot converts a session snapshot to its wire form.
func StateFromSnapshot(snap session.Snapshot) State {
	entities := make([]EntityState, len(snap.Entities))
	for i, e := range snap.Entities {
		entities[i] = EntityState{
			ID:   e.ID,
			Kind: int(e.Kind.ID),
			X:    e.X,
			Y:    e.Y,
			W:    e.Width,
			H:    e.Height,
			Rot:  e.Rotation,
		}
	}
	return State{
		Tick:  snap.Tick,
		Phase: snap.Phase.String(),
		W:     snap.Screen.Width,
		H:     snap.Screen.Height,
		Player: PlayerState{
			X: snap.Player.X,
			Y: snap.Player.Y,
			W: snap.Player.Width,
			H: snap.Player.Height,
		},
		Entities: entities,
		Score:    snap.Stats.Score,
		Lives:    snap.Stats.Lives,
		Level:    snap.Stats.Level,
		Speed:    snap.Stats.SpeedMultiplier,
	}
}

// EventFromSession converts a session event to its wire form.
func EventFromSession(ev session.Event) Event {
	out := Event{
		Type:  ev.Type.String(),
		Score: ev.Stats.Score,
		Lives: ev.Stats.Lives,
		Level: ev.Stats.Level,
	}
	if ev.Entity != nil {
		out.Kind = ev.Entity.Kind.Name
		out.X, out.Y = ev.Entity.Center()
	}
	return out
}
