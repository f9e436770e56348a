// Package registry provides a global registry for simulation factories.
// Simulations register themselves in init() functions, allowing the platform
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-sandpile/internal/core"
)

// Sim is the interface every hosted simulation implements.
// Simulations contain pure logic with no Bubble Tea dependency; the platform
// handles input mapping, timing and rendering.
type Sim interface {
	// ID returns a unique identifier (e.g., "sandpile").
	// Used for CLI commands and persistence keys.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset initializes or resets the simulation for the given screen.
	Reset(cfg core.RuntimeConfig)

	// Step handles one driver tick of input and advances the simulation.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into the provided screen buffer.
	// The screen is pre-cleared before this call.
	Render(dst *core.Screen)

	// State returns the current simulation status.
	State() core.SimState
}

// Persistent is implemented by simulations whose state can be saved and
// restored as an opaque blob.
type Persistent interface {
	SaveState() ([]byte, error)
	LoadState(data []byte) error
}

// SimInfo contains metadata about a registered simulation.
type SimInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a simulation.
type Factory func() Sim

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a simulation factory to the registry.
// Panics if a simulation with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: simulation %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns information about all registered simulations, sorted by ID.
func List() []SimInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]SimInfo, 0, len(factories))
	for id := range factories {
		result = append(result, SimInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new simulation by its ID.
func Create(id string) (Sim, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown simulation %q", id)
	}

	return f(), nil
}

// Exists checks if a simulation with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
