package config

import "math"

// BurstManager calculates how many generations to run per driver tick.
type BurstManager struct {
	cfg BurstConfig
}

// NewBurstManager creates a new burst manager, filling unset bounds.
func NewBurstManager(cfg BurstConfig) *BurstManager {
	if cfg.Steps <= 0 {
		cfg.Steps = 1
	}
	if cfg.MinSteps <= 0 {
		cfg.MinSteps = 1
	}
	if cfg.MaxSteps < cfg.MinSteps {
		cfg.MaxSteps = cfg.MinSteps
	}
	return &BurstManager{cfg: cfg}
}

// IsAdaptive returns whether the burst follows the queue length.
func (b *BurstManager) IsAdaptive() bool {
	return b.cfg.Mode == BurstAdaptive
}

// Steps returns the burst size for the current queue length.
func (b *BurstManager) Steps(queueLen int) int {
	if !b.IsAdaptive() {
		return b.cfg.Steps
	}

	saturate := float64(b.cfg.SaturateAt)
	if saturate <= 0 {
		saturate = 1 // Prevent division by zero
	}
	progress := clampF(float64(queueLen)/saturate, 0.0, 1.0)

	span := float64(b.cfg.MaxSteps - b.cfg.MinSteps)
	return b.cfg.MinSteps + int(math.Round(progress*span))
}

// clampF restricts a float64 to [lo, hi].
func clampF(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
