package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-sandpile/internal/core"
	_ "github.com/vovakirdan/tui-sandpile/internal/games/sandpile"
	"github.com/vovakirdan/tui-sandpile/internal/registry"
	"github.com/vovakirdan/tui-sandpile/internal/storage"
)

func newTestModel(t *testing.T) (Model, *storage.Store) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sim, err := registry.Create("sandpile")
	if err != nil {
		t.Fatalf("registry.Create() failed: %v", err)
	}

	m := NewModel(sim, store, core.RuntimeConfig{ScreenW: 80, ScreenH: 25, TickRate: 30, Seed: 1})
	m.Init()
	return m, store
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func tick(t *testing.T, m Model, n int) Model {
	t.Helper()
	for range n {
		m = send(t, m, TickMsg{ID: m.tickID, Time: time.Now()})
	}
	return m
}

func TestModelRecordsAvalanches(t *testing.T) {
	m, store := newTestModel(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = tick(t, m, 300)

	if !m.simState.Stable() {
		t.Fatalf("field still active after 300 ticks: %+v", m.simState)
	}

	top, err := store.TopAvalanches("sandpile", 10)
	if err != nil {
		t.Fatalf("TopAvalanches() failed: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("expected 1 recorded avalanche, got %d", len(top))
	}
	if top[0].Generations != m.simState.Generation {
		t.Errorf("Generations = %d, want %d", top[0].Generations, m.simState.Generation)
	}
}

func TestModelSnapshotRoundTrip(t *testing.T) {
	m, store := newTestModel(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = tick(t, m, 3)
	saved := m.sim.State()

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	entry, err := store.LatestSnapshot("sandpile")
	if err != nil || entry == nil {
		t.Fatalf("LatestSnapshot() = %v, %v", entry, err)
	}
	if entry.Grains != saved.Grains || entry.Width != saved.Width {
		t.Errorf("entry = %+v, state = %+v", entry, saved)
	}
	if !strings.Contains(m.footer(), "saved") {
		t.Errorf("footer = %q", m.footer())
	}

	// Clear, then load the snapshot back
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = tick(t, m, 1)
	if m.sim.State().Grains != 0 {
		t.Fatalf("clear left %d grains", m.sim.State().Grains)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	got := m.sim.State()
	if got.Grains != saved.Grains || got.Generation != saved.Generation || got.Active != saved.Active {
		t.Errorf("restored state = %+v, want %+v", got, saved)
	}
}

func TestModelMousePours(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = tick(t, m, 1)

	m = send(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = send(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionRelease})
	m = tick(t, m, 1)

	if got := m.sim.State().Grains; got != 40 {
		t.Errorf("Grains = %d, want 40", got)
	}
}

func TestModelBack(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.IsQuitting() {
		t.Error("standalone back should quit")
	}

	m, _ = newTestModel(t)
	m.embedded = true
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() || m.IsQuitting() {
		t.Error("embedded back should return to menu")
	}
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()

	if !strings.Contains(view, "Sandpile") {
		t.Error("view missing HUD")
	}
	if !strings.Contains(view, "drop") {
		t.Error("view missing help footer")
	}
}

func TestModelIgnoresStaleTicks(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = send(t, m, TickMsg{ID: m.tickID + 1, Time: time.Now()})
	if got := m.sim.State().Grains; got != 0 {
		t.Errorf("stale tick stepped the simulation: %d grains", got)
	}

	m = tick(t, m, 1)
	if got := m.sim.State().Grains; got == 0 {
		t.Error("own tick did not step the simulation")
	}
}
