package object

import "github.com/tomz197/circus/internal/draw"

// KindID identifies an entry of the catalog.
type KindID int

const (
	KindBall KindID = iota
	KindRing
	KindStar
	KindPin
	KindBalloon
	KindConfetti
	KindBomb
	KindCannonball
)

// Kind describes one spawnable object type.
type Kind struct {
	ID     KindID
	Name   string
	Color  draw.Color // Presentation only
	Points int
	Hazard bool
}

var catalog = [...]Kind{
	{ID: KindBall, Name: "ball", Color: 0xff6b6b, Points: 10},
	{ID: KindRing, Name: "ring", Color: 0x4ecdc4, Points: 15},
	{ID: KindStar, Name: "star", Color: 0xffe66d, Points: 20},
	{ID: KindPin, Name: "pin", Color: 0x9b59b6, Points: 25},
	{ID: KindBalloon, Name: "balloon", Color: 0xe74c3c, Points: 15},
	{ID: KindConfetti, Name: "confetti", Color: 0xf39c12, Points: 12},
	{ID: KindBomb, Name: "bomb", Color: 0x2c2c2c, Hazard: true},
	{ID: KindCannonball, Name: "cannonball", Color: 0x34495e, Hazard: true},
}

// Catalog returns a copy of every spawnable kind in catalog order.
func Catalog() []Kind {
	kinds := make([]Kind, len(catalog))
	copy(kinds, catalog[:])
	return kinds
}

// KindOf returns the catalog entry for id.
func KindOf(id KindID) (Kind, bool) {
	if id < 0 || int(id) >= len(catalog) {
		return Kind{}, false
	}
	return catalog[id], true
}

// PickRandomKind returns a uniformly random entry. Every entry has the same
// weight, so hazards come up 2 times in 8.
func PickRandomKind(rng Rand) Kind {
	return catalog[rng.Intn(len(catalog))]
}

// String returns the kind name.
func (k Kind) String() string {
	return k.Name
}
