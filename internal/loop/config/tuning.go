package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the gameplay constants a session reads. Distances are in
// logical units, speeds in units per tick, intervals in ticks.
type Tuning struct {
	Player     PlayerTuning     `yaml:"player"`
	Entities   EntityTuning     `yaml:"entities"`
	Spawn      SpawnTuning      `yaml:"spawn"`
	Difficulty DifficultyTuning `yaml:"difficulty"`
	Lives      int              `yaml:"lives"`
}

// PlayerTuning describes the performer.
type PlayerTuning struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Speed    float64 `yaml:"speed"`
	Baseline float64 `yaml:"baseline"` // Distance from the viewport bottom to the player's top edge
}

// EntityTuning describes falling objects.
type EntityTuning struct {
	Size      float64 `yaml:"size"`
	FallSpeed float64 `yaml:"fall_speed"` // Fall speed at speed multiplier 1
	SpinStep  float64 `yaml:"spin_step"`  // Radians added to rotation each tick
}

// SpawnTuning describes the spawn cadence and placement.
type SpawnTuning struct {
	Interval    int     `yaml:"interval"`     // Base ticks between spawns
	MinInterval int     `yaml:"min_interval"` // Floor applied after difficulty scaling
	Margin      float64 `yaml:"margin"`       // Left margin; right margin is twice this
	Offset      float64 `yaml:"offset"`       // Spawn height above the top edge
}

// DifficultyTuning describes score-driven progression.
type DifficultyTuning struct {
	LevelStep int     `yaml:"level_step"` // Points per level
	SpeedStep float64 `yaml:"speed_step"` // Speed multiplier added per level
}

// DefaultTuning returns the stock circus parameters.
func DefaultTuning() Tuning {
	return Tuning{
		Player: PlayerTuning{
			Width:    60,
			Height:   80,
			Speed:    5,
			Baseline: 200,
		},
		Entities: EntityTuning{
			Size:      30,
			FallSpeed: 3,
			SpinStep:  0.1,
		},
		Spawn: SpawnTuning{
			Interval:    120,
			MinInterval: 20,
			Margin:      20,
			Offset:      40,
		},
		Difficulty: DifficultyTuning{
			LevelStep: 100,
			SpeedStep: 0.5,
		},
		Lives: InitialLives,
	}
}

// Validate reports every parameter that would make a session misbehave.
func (t Tuning) Validate() error {
	var errs []error
	if t.Player.Width <= 0 || t.Player.Height <= 0 {
		errs = append(errs, fmt.Errorf("player size must be positive, got %vx%v", t.Player.Width, t.Player.Height))
	}
	if t.Player.Speed < 0 {
		errs = append(errs, fmt.Errorf("player speed must not be negative, got %v", t.Player.Speed))
	}
	if t.Entities.Size <= 0 {
		errs = append(errs, fmt.Errorf("entity size must be positive, got %v", t.Entities.Size))
	}
	if t.Entities.FallSpeed <= 0 {
		errs = append(errs, fmt.Errorf("fall speed must be positive, got %v", t.Entities.FallSpeed))
	}
	if t.Spawn.Interval < 1 {
		errs = append(errs, fmt.Errorf("spawn interval must be at least 1, got %d", t.Spawn.Interval))
	}
	if t.Spawn.MinInterval < 1 || t.Spawn.MinInterval > t.Spawn.Interval {
		errs = append(errs, fmt.Errorf("spawn min_interval must be in [1, %d], got %d", t.Spawn.Interval, t.Spawn.MinInterval))
	}
	if t.Difficulty.LevelStep < 1 {
		errs = append(errs, fmt.Errorf("level_step must be at least 1, got %d", t.Difficulty.LevelStep))
	}
	if t.Difficulty.SpeedStep < 0 {
		errs = append(errs, fmt.Errorf("speed_step must not be negative, got %v", t.Difficulty.SpeedStep))
	}
	if t.Lives < 1 {
		errs = append(errs, fmt.Errorf("lives must be at least 1, got %d", t.Lives))
	}
	return errors.Join(errs...)
}

// ParseTuning decodes YAML over the defaults, so a file only needs the keys it changes.
func ParseTuning(data []byte) (Tuning, error) {
	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("tuning: unmarshal: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("tuning: invalid: %w", err)
	}
	return t, nil
}

// LoadTuning reads a YAML tuning file. An empty path yields the defaults.
func LoadTuning(path string) (Tuning, error) {
	if path == "" {
		return DefaultTuning(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("tuning: load %s: %w", path, err)
	}
	t, err := ParseTuning(data)
	if err != nil {
		return Tuning{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
