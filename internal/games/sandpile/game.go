// Package sandpile hosts the abelian sandpile engine as interactive
// simulations: a free sandbox and a seeded grain rain.
package sandpile

import (
	"math/rand/v2"

	"github.com/vovakirdan/tui-sandpile/internal/config"
	platformcore "github.com/vovakirdan/tui-sandpile/internal/core"
	"github.com/vovakirdan/tui-sandpile/internal/games/sandpile/core"
	"github.com/vovakirdan/tui-sandpile/internal/registry"
)

// Mode selects how grains arrive on the field.
type Mode string

const (
	ModeSandbox Mode = "sandbox"
	ModeRain    Mode = "rain"
)

// Game implements registry.Sim and registry.Persistent for the sandpile.
type Game struct {
	mode  Mode
	cfg   config.SandpileConfig
	burst *config.BurstManager
	rng   *rand.Rand
	field *core.Field

	tick      uint64
	paused    bool
	tooSmall  bool
	lastBurst int

	// Cursor and line anchor in grid coordinates
	cursorX, cursorY int
	anchor           *core.Cell

	// Last pointer position while a mouse button is held
	dragging     bool
	dragX, dragY int

	// Avalanche in progress
	avalanche platformcore.Avalanche
	tracking  bool

	// Layout
	screenW   int
	screenH   int
	hudHeight int
	originX   int // Screen column of grid cell (0, 0)
	originY   int // Screen row of grid cell (0, 0)
}

// Package-level settings applied on Reset, set by the CLI.
var (
	configPath  string
	speedPreset config.SpeedPreset
)

// SetConfigPath sets a custom config file path. Empty means the default search.
func SetConfigPath(path string) {
	configPath = path
}

// SetSpeedPreset overrides the configured burst with a named preset.
func SetSpeedPreset(preset config.SpeedPreset) {
	speedPreset = preset
}

// New creates a sandbox simulation.
func New() *Game {
	return &Game{mode: ModeSandbox, hudHeight: 2}
}

// NewRain creates a simulation that drops grains at random positions.
func NewRain() *Game {
	return &Game{mode: ModeRain, hudHeight: 2}
}

func init() {
	registry.Register("sandpile", func() registry.Sim {
		return New()
	})
	registry.Register("sandpile_rain", func() registry.Sim {
		return NewRain()
	})
}

// ID returns the simulation identifier.
func (g *Game) ID() string {
	if g.mode == ModeRain {
		return "sandpile_rain"
	}
	return "sandpile"
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeRain {
		return "Sandpile (Rain)"
	}
	return "Sandpile"
}

// Reset loads configuration and builds a fresh field sized for the screen.
func (g *Game) Reset(cfg platformcore.RuntimeConfig) {
	sc, err := config.LoadSandpile(configPath)
	if err != nil {
		sc = config.DefaultSandpileConfig()
	}
	if speedPreset != "" {
		config.ApplySpeedPreset(&sc, speedPreset)
	}
	g.configure(sc, cfg)
}

// configure applies an already-loaded configuration.
func (g *Game) configure(sc config.SandpileConfig, cfg platformcore.RuntimeConfig) {
	g.cfg = sc
	g.cfg.Normalize()
	if g.cfg.Grid.CellWidth <= 0 {
		g.cfg.Grid.CellWidth = 1
	}
	g.burst = config.NewBurstManager(sc.Burst)
	g.rng = rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)>>1|1))
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.tick = 0
	g.paused = sc.Sim.StartPaused
	g.lastBurst = 0
	g.field = nil

	w, h := g.gridSize()
	if w < 1 || h < 1 {
		g.tooSmall = true
		return
	}
	field, err := core.New(w, h)
	if err != nil {
		g.tooSmall = true
		return
	}
	g.setField(field)
	g.cursorX, g.cursorY = w/2, h/2
	g.seedCenter()
}

// gridSize returns configured dimensions, filling zeros from the screen.
func (g *Game) gridSize() (int, int) {
	w, h := g.cfg.Grid.Width, g.cfg.Grid.Height
	if w <= 0 {
		w = (g.screenW - 2) / g.cfg.Grid.CellWidth
	}
	if h <= 0 {
		h = g.screenH - g.hudHeight - 2
	}
	return w, h
}

// setField installs a field and recomputes the layout around it.
func (g *Game) setField(f *core.Field) {
	g.field = f
	g.anchor = nil
	g.dragging = false
	g.avalanche = platformcore.Avalanche{}
	g.tracking = false

	boxW := f.Width()*g.cfg.Grid.CellWidth + 2
	boxH := f.Height() + 2
	g.tooSmall = boxW > g.screenW || g.hudHeight+boxH > g.screenH
	g.originX = (g.screenW-boxW)/2 + 1
	g.originY = g.hudHeight + 1

	g.cursorX = platformcore.Clamp(g.cursorX, 0, f.Width()-1)
	g.cursorY = platformcore.Clamp(g.cursorY, 0, f.Height()-1)
}

// seedCenter pours the configured number of grains on the centre cell.
func (g *Game) seedCenter() {
	n := g.cfg.Sim.SeedCenter
	if n <= 0 || g.field == nil {
		return
	}
	cx, cy := g.field.Width()/2, g.field.Height()/2
	p, err := g.field.CellForInjection(cx, cy)
	if err != nil {
		return
	}
	*p = core.ApplyDelta(*p, int64(n))
}

// Step handles one tick of input and advances the field by a burst.
func (g *Game) Step(input platformcore.InputFrame) platformcore.StepResult {
	g.tick++

	// Restart also works while the window is too small, so an oversized
	// loaded field can be dropped without resizing the terminal.
	if input.Has(platformcore.ActionRestart) {
		g.restart()
		return platformcore.StepResult{State: g.State()}
	}

	if g.field == nil || g.tooSmall {
		return platformcore.StepResult{State: g.State()}
	}

	if input.Has(platformcore.ActionPause) {
		g.paused = !g.paused
	}

	g.processInput(input)

	var settled []platformcore.Avalanche
	switch {
	case g.paused:
		if input.Has(platformcore.ActionStep) {
			settled = g.advance(1)
		}
	default:
		if g.mode == ModeRain {
			g.rain()
		}
		settled = g.advance(g.burst.Steps(g.field.QueueLen()))
	}

	return platformcore.StepResult{State: g.State(), Settled: settled}
}

// restart empties the field. A field whose size no longer matches the
// configured fit, such as a loaded snapshot, is replaced by a fitted one.
func (g *Game) restart() {
	w, h := g.gridSize()
	if g.field != nil && g.field.Width() == w && g.field.Height() == h {
		g.field.Clear()
		g.setField(g.field)
		g.seedCenter()
		return
	}

	field, err := core.New(w, h)
	if err != nil {
		g.field = nil
		g.tooSmall = true
		return
	}
	g.setField(field)
	g.seedCenter()
}

// processInput moves the cursor and injects grains.
func (g *Game) processInput(input platformcore.InputFrame) {
	w, h := g.field.Width(), g.field.Height()

	switch {
	case input.Has(platformcore.ActionUp):
		g.cursorY = platformcore.Clamp(g.cursorY-1, 0, h-1)
	case input.Has(platformcore.ActionDown):
		g.cursorY = platformcore.Clamp(g.cursorY+1, 0, h-1)
	}
	switch {
	case input.Has(platformcore.ActionLeft):
		g.cursorX = platformcore.Clamp(g.cursorX-1, 0, w-1)
	case input.Has(platformcore.ActionRight):
		g.cursorX = platformcore.Clamp(g.cursorX+1, 0, w-1)
	}

	if input.Has(platformcore.ActionDrop) {
		_ = g.field.InjectPoint(g.cursorX, g.cursorY) // cursor is always in range
	}

	if input.Has(platformcore.ActionLine) {
		if g.anchor == nil {
			c, err := g.field.Grid().Cell(g.cursorX, g.cursorY)
			if err == nil {
				g.anchor = &c
			}
		} else {
			_ = g.field.InjectLine(g.anchor.X, g.anchor.Y, g.cursorX, g.cursorY)
			g.anchor = nil
		}
	}

	for _, ev := range input.Pointer {
		g.handlePointer(ev)
	}
}

// handlePointer pours grains under the mouse. Screen positions are clamped
// onto the grid, so dragging past the border pours along the edge.
func (g *Game) handlePointer(ev platformcore.PointerEvent) {
	if ev.Kind == platformcore.PointerRelease {
		g.dragging = false
		return
	}

	x, y := g.screenToGrid(ev.X, ev.Y)
	g.cursorX, g.cursorY = x, y

	if ev.Kind == platformcore.PointerPress || !g.dragging {
		_ = g.field.InjectPoint(x, y)
	} else {
		_ = g.field.InjectLine(g.dragX, g.dragY, x, y)
	}
	g.dragging = true
	g.dragX, g.dragY = x, y
}

// screenToGrid maps a terminal cell to the nearest grid cell.
func (g *Game) screenToGrid(sx, sy int) (int, int) {
	fx := float64(sx-g.originX) / float64(g.cfg.Grid.CellWidth)
	fy := float64(sy - g.originY)
	return g.field.Clamp(fx, fy)
}

// rain drops grains at random cells every configured number of ticks.
func (g *Game) rain() {
	every := max(1, g.cfg.Rain.Every)
	if g.tick%uint64(every) != 0 {
		return
	}
	for range max(1, g.cfg.Rain.Drops) {
		x := g.rng.IntN(g.field.Width())
		y := g.rng.IntN(g.field.Height())
		_ = g.field.InjectPoint(x, y)
	}
}

// advance runs up to n generations and returns avalanches that settled.
func (g *Game) advance(n int) []platformcore.Avalanche {
	genBefore := g.field.Generation()
	steps, stats := g.field.StepBurst(n)
	g.lastBurst = steps

	if stats.Toppled > 0 {
		g.tracking = true
		g.avalanche.Generations += g.field.Generation() - genBefore
		g.avalanche.Topples += stats.Toppled
		g.avalanche.Lost += stats.Lost
	}

	if g.tracking && g.field.Stable() {
		done := g.avalanche
		g.avalanche = platformcore.Avalanche{}
		g.tracking = false
		return []platformcore.Avalanche{done}
	}
	return nil
}

// State returns the current simulation status.
func (g *Game) State() platformcore.SimState {
	if g.field == nil {
		return platformcore.SimState{Paused: g.paused}
	}
	return platformcore.SimState{
		Width:      g.field.Width(),
		Height:     g.field.Height(),
		Generation: g.field.Generation(),
		Active:     g.field.QueueLen(),
		Grains:     g.field.Mass(),
		Paused:     g.paused,
	}
}

// SaveState encodes the field as a binary snapshot.
func (g *Game) SaveState() ([]byte, error) {
	if g.field == nil {
		return nil, core.ErrInvalidSize
	}
	return g.field.Snapshot().MarshalBinary()
}

// LoadState replaces the field with a decoded snapshot. The grid keeps the
// snapshot's dimensions even when they differ from the screen fit.
func (g *Game) LoadState(data []byte) error {
	snap, err := core.UnmarshalSnapshot(data)
	if err != nil {
		return err
	}
	field, err := core.FromSnapshot(snap)
	if err != nil {
		return err
	}
	g.setField(field)
	return nil
}

// Field exposes the engine for read-only inspection.
func (g *Game) Field() *core.Field {
	return g.field
}

var (
	_ registry.Sim        = (*Game)(nil)
	_ registry.Persistent = (*Game)(nil)
)
