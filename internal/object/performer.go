package object

import (
	"github.com/tomz197/circus/internal/draw"
	"github.com/tomz197/circus/internal/loop/config"
	"github.com/tomz197/circus/internal/physics"
)

// Performer is the tightrope walker the player steers.
type Performer struct {
	X, Y   float64 // Top-left corner
	Width  float64
	Height float64
	Speed  float64 // Units per tick at full intent

	baseline float64 // Distance from the viewport bottom to the top edge
}

// NewPerformer creates a performer centered horizontally on screen.
func NewPerformer(t config.PlayerTuning, screen Screen) Performer {
	p := Performer{
		X:        screen.Width/2 - t.Width/2,
		Width:    t.Width,
		Height:   t.Height,
		Speed:    t.Speed,
		baseline: t.Baseline,
	}
	p.Fit(screen)
	return p
}

// Move shifts the performer by intent*Speed and keeps it on screen.
// intent must already be within [-1, 1].
func (p *Performer) Move(intent float64, screen Screen) {
	p.X += intent * p.Speed
	p.clampX(screen)
}

// Fit recomputes the fixed line for a new viewport and re-clamps x.
// On viewports shorter than the baseline the performer sits at the top.
func (p *Performer) Fit(screen Screen) {
	p.Y = physics.Clamp(screen.Height-p.baseline, 0, screen.Height-p.Height)
	p.clampX(screen)
}

func (p *Performer) clampX(screen Screen) {
	p.X = physics.Clamp(p.X, 0, screen.Width-p.Width)
}

// Bounds returns the collision box.
func (p *Performer) Bounds() physics.Rect {
	return physics.Rect{X: p.X, Y: p.Y, W: p.Width, H: p.Height}
}

// Performer colors.
const (
	costumeColor draw.Color = 0xe74c3c
	skinColor    draw.Color = 0xfdbcb4
	hatColor     draw.Color = 0x2c3e50
	ropeColor    draw.Color = 0x8b7355
	legColor     draw.Color = 0x34495e
)

// Draw renders the performer standing on the tightrope.
func (p Performer) Draw(ctx DrawContext) {
	c := ctx.Canvas
	w, h := p.Width, p.Height
	cx := p.X + w/2

	// Tightrope spans the whole canvas just below the feet.
	ropeY := p.Y + h + 10
	c.DrawLine(draw.Point{X: 0, Y: ropeY}, draw.Point{X: c.LogicalWidth(), Y: ropeY}, ropeColor)

	// Legs
	c.FillRect(cx-w*0.25, p.Y+h*0.65, w*0.15, h*0.35, legColor)
	c.FillRect(cx+w*0.1, p.Y+h*0.65, w*0.15, h*0.35, legColor)
	// Body
	c.FillRect(cx-w*0.3, p.Y+h*0.3, w*0.6, h*0.38, costumeColor)
	// Arms out for balance
	c.DrawLine(draw.Point{X: p.X, Y: p.Y + h*0.35}, draw.Point{X: p.X + w, Y: p.Y + h*0.35}, skinColor)
	// Head
	c.DrawCircle(cx, p.Y+h*0.2, w*0.18, skinColor, true)
	// Hat
	c.FillRect(cx-w*0.15, p.Y, w*0.3, h*0.08, hatColor)
}
