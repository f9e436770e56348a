package core

// RuntimeConfig contains configuration passed to simulations at initialization.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Driver ticks per second (default 30)
	Seed     int64 // RNG seed for simulations that drop grains at random
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// SimState is the status a simulation reports to the platform.
type SimState struct {
	Width      int    // Grid width in cells
	Height     int    // Grid height in cells
	Generation uint64 // Generations that toppled at least one cell
	Active     int    // Cells queued for evaluation
	Grains     uint64 // Grains on the field
	Paused     bool
}

// Stable reports whether no cell is waiting to topple.
func (s SimState) Stable() bool {
	return s.Active == 0
}

// Avalanche summarizes one cascade, from the first queued cell until the
// field is stable again.
type Avalanche struct {
	Generations uint64 // Synchronous waves needed to settle
	Topples     int    // Total cell topples
	Lost        int    // Grains that fell off the boundary
}

// StepResult is returned by Sim.Step after each driver tick.
type StepResult struct {
	State SimState

	// Settled lists avalanches that finished during this tick.
	Settled []Avalanche
}
