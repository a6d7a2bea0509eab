// Package config centralizes all tunable game parameters.
package config

import "time"

// Logical units per terminal cell. A half-block row holds two sub-pixels,
// so one sub-pixel is UnitsPerCell logical units tall.
const (
	UnitsPerCell = 10
)

// Max render resolution in terminal cells. Larger terminals get a centered,
// bordered play area.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Player
const (
	InitialLives = 3
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Simulation tick rate for remote sessions
const (
	TickRate      = 60
	TickTime      = time.Second / TickRate
	BroadcastRate = 30
	BroadcastTime = time.Second / BroadcastRate
)

// Catch effect
const (
	SparkleCount    = 8
	SparkleSpeed    = 120.0 // Logical units per second
	SparkleLifetime = 0.4   // Seconds
)
