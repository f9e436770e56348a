package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-sandpile/internal/core"
)

func sendSession(t *testing.T, m SessionModel, msg tea.Msg) SessionModel {
	t.Helper()
	next, _ := m.Update(msg)
	sm, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return sm
}

func TestSessionFlow(t *testing.T) {
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 25, TickRate: 30, Seed: 7}
	m := NewSessionModel(nil, cfg)

	if m.view != viewMenu {
		t.Fatalf("session starts in view %d, want menu", m.view)
	}

	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != viewSim || m.sim == nil {
		t.Fatalf("enter should start a simulation, view = %d", m.view)
	}
	if !m.sim.embedded {
		t.Error("session simulations must return to the menu on back")
	}
	if got := m.sim.sim.ID(); got != "sandpile" {
		t.Errorf("started %q, want first registered simulation", got)
	}

	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != viewMenu || m.sim != nil {
		t.Fatalf("esc should return to the menu, view = %d", m.view)
	}
	if m.quitting {
		t.Error("going back must not end the session")
	}

	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.view != viewRecords || m.records == nil {
		t.Fatalf("tab should open records, view = %d", m.view)
	}

	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != viewMenu {
		t.Fatalf("esc on records should return to the menu, view = %d", m.view)
	}

	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !m.quitting {
		t.Error("q on the menu should end the session")
	}
	if m.View() != "" {
		t.Error("a finished session renders nothing")
	}
}

func TestSessionResizeReachesSimulation(t *testing.T) {
	m := NewSessionModel(nil, core.RuntimeConfig{ScreenW: 80, ScreenH: 25, TickRate: 30, Seed: 7})
	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = sendSession(t, m, tea.WindowSizeMsg{Width: 40, Height: 15})
	if m.config.ScreenW != 40 || m.config.ScreenH != 15 {
		t.Errorf("session config = %dx%d, want 40x15", m.config.ScreenW, m.config.ScreenH)
	}
	if w := m.sim.screen.Width(); w != 40 {
		t.Errorf("simulation screen width = %d, want 40", w)
	}
}
