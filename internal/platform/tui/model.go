package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-sandpile/internal/core"
	"github.com/vovakirdan/tui-sandpile/internal/registry"
	"github.com/vovakirdan/tui-sandpile/internal/storage"
)

// statusTicks is how long a status message replaces the help footer.
const statusTicks = 90

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the Bubble Tea model that drives one simulation.
// The last terminal row is reserved for the help footer.
type Model struct {
	sim        registry.Sim
	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	simState   core.SimState
	keyMapper  *KeyMapper
	help       help.Model
	status     string
	statusLeft int
	tickID     int64
	embedded   bool // Back returns to a menu instead of quitting
	quitting   bool
	backToMenu bool
}

// NewModel creates a new Bubble Tea model for the given simulation.
func NewModel(sim registry.Sim, store *storage.Store, cfg core.RuntimeConfig) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}

	h := help.New()
	h.Width = cfg.ScreenW

	return Model{
		sim:        sim,
		screen:     core.NewScreen(cfg.ScreenW, simHeight(cfg.ScreenH)),
		store:      store,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
		help:       h,
		tickID:     time.Now().UnixNano(),
	}
}

// simHeight leaves one row for the footer.
func simHeight(h int) int {
	return max(1, h-1)
}

// simConfig is the runtime config as seen by the simulation.
func (m Model) simConfig() core.RuntimeConfig {
	cfg := m.config
	cfg.ScreenH = simHeight(cfg.ScreenH)
	return cfg
}

// Init initializes the model and starts the simulation.
func (m Model) Init() tea.Cmd {
	m.sim.Reset(m.simConfig())
	return tickCmd(m.config.TickRate, m.tickID)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if ev, ok := m.keyMapper.MapMouse(msg); ok {
			m.inputFrame.AddPointer(ev)
		}
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		if msg.ID != m.tickID {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keyMapper.Keys()

	switch {
	case key.Matches(msg, keys.Save):
		m.saveSnapshot()
		return m, nil
	case key.Matches(msg, keys.Load):
		m.loadSnapshot()
		return m, nil
	case key.Matches(msg, keys.Back):
		if m.embedded {
			m.backToMenu = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleResize refits the simulation. A field holding grains is carried over
// through a snapshot instead of being rebuilt.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, simHeight(msg.Height))
	m.help.Width = msg.Width

	p, persistent := m.sim.(registry.Persistent)
	if !persistent || m.sim.State().Grains == 0 {
		m.sim.Reset(m.simConfig())
		return m, nil
	}

	data, err := p.SaveState()
	m.sim.Reset(m.simConfig())
	if err == nil {
		//nolint:errcheck // Snapshot was produced by this simulation
		p.LoadState(data)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	result := m.sim.Step(m.inputFrame)
	m.simState = result.State

	// Record settled avalanches
	if m.store != nil {
		for _, av := range result.Settled {
			//nolint:errcheck // Best-effort save, simulation continues regardless
			m.store.SaveAvalanche(m.sim.ID(), av.Generations, av.Topples, av.Lost)
		}
	}

	if m.statusLeft > 0 {
		m.statusLeft--
	}

	// Clear input for next frame
	m.inputFrame.Clear()

	return m, tickCmd(m.config.TickRate, m.tickID)
}

// setStatus shows a message in the footer for a while.
func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusLeft = statusTicks
}

// saveSnapshot stores the current field in the database.
func (m *Model) saveSnapshot() {
	p, ok := m.sim.(registry.Persistent)
	if !ok {
		m.setStatus("%s cannot be saved", m.sim.Title())
		return
	}
	if m.store == nil {
		m.setStatus("no database, snapshot not saved")
		return
	}

	data, err := p.SaveState()
	if err != nil {
		m.setStatus("save failed: %v", err)
		return
	}

	st := m.sim.State()
	id, err := m.store.SaveSnapshot(storage.SnapshotEntry{
		SimID:      m.sim.ID(),
		Name:       time.Now().Format("Jan 02 15:04:05"),
		Width:      st.Width,
		Height:     st.Height,
		Generation: st.Generation,
		Grains:     st.Grains,
		Data:       data,
	})
	if err != nil {
		m.setStatus("save failed: %v", err)
		return
	}
	m.setStatus("snapshot #%d saved", id)
}

// loadSnapshot restores the latest stored field for this simulation.
func (m *Model) loadSnapshot() {
	p, ok := m.sim.(registry.Persistent)
	if !ok || m.store == nil {
		m.setStatus("nothing to load")
		return
	}

	entry, err := m.store.LatestSnapshot(m.sim.ID())
	if err != nil {
		m.setStatus("load failed: %v", err)
		return
	}
	if entry == nil {
		m.setStatus("no snapshot saved for %s", m.sim.ID())
		return
	}
	if err := p.LoadState(entry.Data); err != nil {
		m.setStatus("load failed: %v", err)
		return
	}
	m.simState = m.sim.State()
	m.setStatus("snapshot #%d loaded (%dx%d, gen %d)", entry.ID, entry.Width, entry.Height, entry.Generation)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Render simulation to a cleared screen buffer
	m.screen.Clear()
	m.sim.Render(m.screen)

	return RenderScreen(m.screen) + "\n" + m.footer()
}

// footer shows the status message if one is active, otherwise key help.
func (m Model) footer() string {
	if m.statusLeft > 0 && m.status != "" {
		return statusStyle.Render(" " + m.status)
	}
	return helpStyle.Render(" " + m.help.View(m.keyMapper.Keys()))
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program for a single simulation.
func Run(sim registry.Sim, store *storage.Store, cfg core.RuntimeConfig) error {
	model := NewModel(sim, store, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Press and drag to pour grains
	)

	_, err := p.Run()
	return err
}
