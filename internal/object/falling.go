package object

import (
	"math"

	"github.com/tomz197/circus/internal/draw"
	"github.com/tomz197/circus/internal/physics"
)

// FallingEntity is one object dropping toward the performer.
type FallingEntity struct {
	ID       uint64 // Assigned by the owning session, unique per session
	Kind     Kind
	X, Y     float64 // Top-left corner
	Width    float64
	Height   float64
	Speed    float64 // Units per tick, fixed at spawn
	Rotation float64 // Visual only
}

// Advance moves the entity down by its speed and spins it by spin radians.
func (e *FallingEntity) Advance(spin float64) {
	e.Y += e.Speed
	e.Rotation += spin
}

// Bounds returns the collision box.
func (e *FallingEntity) Bounds() physics.Rect {
	return physics.Rect{X: e.X, Y: e.Y, W: e.Width, H: e.Height}
}

// Hazard reports whether catching the entity costs a life.
func (e *FallingEntity) Hazard() bool {
	return e.Kind.Hazard
}

// Points is the score granted on catch; zero for hazards.
func (e *FallingEntity) Points() int {
	if e.Kind.Hazard {
		return 0
	}
	return e.Kind.Points
}

// Exited reports whether the entity has fallen past the bottom edge.
func (e *FallingEntity) Exited(screen Screen) bool {
	return e.Y > screen.Height
}

// Center returns the middle of the collision box.
func (e *FallingEntity) Center() (x, y float64) {
	return e.X + e.Width/2, e.Y + e.Height/2
}

// Draw renders the entity according to its kind.
func (e FallingEntity) Draw(ctx DrawContext) {
	c := ctx.Canvas
	cx, cy := e.Center()
	r := math.Min(e.Width, e.Height) / 2
	col := e.Kind.Color

	switch e.Kind.ID {
	case KindBall:
		c.DrawCircle(cx, cy, r, col, true)
		c.DrawLine(draw.Point{X: cx - r, Y: cy}, draw.Point{X: cx + r, Y: cy}, 0xffffff)
	case KindRing:
		c.DrawCircle(cx, cy, r, col, false)
	case KindStar:
		c.DrawPolygon(starPoints(c, cx, cy, r, e.Rotation), col, true)
	case KindPin:
		c.DrawPolygon(pinPoints(c, cx, cy, r, e.Rotation), col, true)
	case KindBalloon:
		c.DrawCircle(cx, cy-r*0.2, r*0.8, col, true)
		c.DrawLine(draw.Point{X: cx, Y: cy + r*0.6}, draw.Point{X: cx, Y: cy + r*1.4}, 0xcccccc)
	case KindConfetti:
		palette := [...]draw.Color{0xff6b6b, 0x4ecdc4, 0xffe66d, 0x9b59b6}
		for i := 0; i < 6; i++ {
			a := e.Rotation + float64(i)*math.Pi/3
			d := r * (0.4 + 0.1*float64(i%3))
			c.Set(cx+math.Cos(a)*d, cy+math.Sin(a)*d, palette[i%len(palette)])
		}
	case KindBomb:
		c.DrawCircle(cx, cy, r*0.8, col, true)
		c.DrawLine(draw.Point{X: cx, Y: cy - r*0.8}, draw.Point{X: cx + r*0.5, Y: cy - r*1.3}, 0x8b4513)
		c.Set(cx+r*0.5, cy-r*1.3, 0xff4500)
	case KindCannonball:
		c.DrawCircle(cx, cy, r, col, true)
		c.Set(cx-r*0.4, cy-r*0.4, 0x95a5a6)
	}
}

// starPoints returns a rotated five-pointed star.
func starPoints(c *draw.Canvas, cx, cy, r, rot float64) []draw.Point {
	pts := c.BorrowPoints(10)
	for i := range pts {
		radius := r
		if i%2 == 1 {
			radius = r / 2
		}
		a := rot - math.Pi/2 + float64(i)*math.Pi/5
		pts[i] = draw.Point{X: cx + math.Cos(a)*radius, Y: cy + math.Sin(a)*radius}
	}
	return pts
}

// pinPoints returns a rotated juggling pin outline (a narrow diamond).
func pinPoints(c *draw.Canvas, cx, cy, r, rot float64) []draw.Point {
	pts := c.BorrowPoints(4)
	offsets := [4][2]float64{{0, -r}, {r * 0.35, 0.2 * r}, {0, r}, {-r * 0.35, 0.2 * r}}
	sin, cos := math.Sincos(rot)
	for i, o := range offsets {
		pts[i] = draw.Point{
			X: cx + o[0]*cos - o[1]*sin,
			Y: cy + o[0]*sin + o[1]*cos,
		}
	}
	return pts
}
