// Package object defines the things that live in the circus ring: the
// performer, falling entities, the spawner that creates them and the
// visual-only particles.
package object

import (
	"github.com/tomz197/circus/internal/draw"
)

// Rand is the subset of *rand.Rand the game needs. Sessions inject their own
// source so runs are reproducible.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Screen is the viewport size in logical units.
type Screen struct {
	Width  float64
	Height float64
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas
}

// Drawable is implemented by everything that can be put on the canvas.
type Drawable interface {
	Draw(ctx DrawContext)
}
