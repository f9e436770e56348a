// Package config provides YAML-based simulation configuration loading and
// burst-size management for the sandpile platform.
package config

import "math"

// SandpileConfig contains all configuration for the sandpile simulations.
type SandpileConfig struct {
	Grid    GridConfig    `yaml:"grid"`
	Sim     SimConfig     `yaml:"sim"`
	Burst   BurstConfig   `yaml:"burst"`
	Rain    RainConfig    `yaml:"rain"`
	Palette PaletteConfig `yaml:"palette"`
}

// MaxSeedCenter is the largest pile a single cell can hold.
const MaxSeedCenter = math.MaxUint32

// Normalize clamps values that would otherwise overflow a cell count.
func (c *SandpileConfig) Normalize() {
	c.Sim.SeedCenter = min(max(c.Sim.SeedCenter, 0), MaxSeedCenter)
}

// GridConfig defines the field dimensions.
// A zero width or height means "fit the terminal".
type GridConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	CellWidth int `yaml:"cell_width"` // Terminal columns per cell
}

// SimConfig defines sandbox behaviour.
type SimConfig struct {
	StartPaused bool `yaml:"start_paused"`
	SeedCenter  int  `yaml:"seed_center"` // Grains poured on the centre at reset, 0 for none
}

// BurstConfig defines how many generations run per driver tick.
type BurstConfig struct {
	Mode       string `yaml:"mode"`        // "fixed" or "adaptive"
	Steps      int    `yaml:"steps"`       // Steps per tick in fixed mode
	MinSteps   int    `yaml:"min_steps"`   // Adaptive lower bound
	MaxSteps   int    `yaml:"max_steps"`   // Adaptive upper bound
	SaturateAt int    `yaml:"saturate_at"` // Queue length at which max_steps is reached
}

// RainConfig defines the random grain rain of sandpile_rain.
type RainConfig struct {
	Every int `yaml:"every"` // Ticks between drops
	Drops int `yaml:"drops"` // Points injected per drop
}

// PaletteConfig maps grain counts to colour names.
type PaletteConfig struct {
	Levels     []string `yaml:"levels"`     // Colours for counts 0..3
	Overloaded string   `yaml:"overloaded"` // Colour for counts above the threshold
}

// SpeedPreset represents a named burst setting.
type SpeedPreset string

const (
	SpeedSlow     SpeedPreset = "slow"
	SpeedNormal   SpeedPreset = "normal"
	SpeedFast     SpeedPreset = "fast"
	SpeedTurbo    SpeedPreset = "turbo"
	SpeedAdaptive SpeedPreset = "adaptive"
)

// Burst modes.
const (
	BurstFixed    = "fixed"
	BurstAdaptive = "adaptive"
)

// StepsForPreset returns the fixed burst size for a preset.
// Adaptive and unknown presets return 0.
func StepsForPreset(preset SpeedPreset) int {
	switch preset {
	case SpeedSlow:
		return 1
	case SpeedNormal:
		return 4
	case SpeedFast:
		return 16
	case SpeedTurbo:
		return 64
	default:
		return 0
	}
}

// IsValidPreset reports whether preset names a known speed.
func IsValidPreset(preset SpeedPreset) bool {
	return preset == SpeedAdaptive || StepsForPreset(preset) > 0
}
