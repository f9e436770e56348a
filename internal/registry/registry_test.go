package registry

import (
	"testing"

	"github.com/vovakirdan/tui-sandpile/internal/core"
)

type stubSim struct{ id string }

func (s *stubSim) ID() string { return s.id }
func (s *stubSim) Title() string { return "Stub " + s.id }
func (s *stubSim) Reset(core.RuntimeConfig) {}
func (s *stubSim) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (s *stubSim) Render(*core.Screen) {}
func (s *stubSim) State() core.SimState { return core.SimState{} }

func TestRegisterAndCreate(t *testing.T) {
	Register("stub_b", func() Sim { return &stubSim{id: "stub_b"} })
	Register("stub_a", func() Sim { return &stubSim{id: "stub_a"} })

	if !Exists("stub_a") {
		t.Fatal("stub_a should exist")
	}
	if Exists("missing") {
		t.Error("missing should not exist")
	}

	sim, err := Create("stub_b")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if sim.ID() != "stub_b" {
		t.Errorf("ID() = %q, want stub_b", sim.ID())
	}

	if _, err := Create("missing"); err == nil {
		t.Error("expected error for unknown simulation")
	}

	var ids []string
	for _, info := range List() {
		ids = append(ids, info.ID)
		if info.ID == "stub_a" && info.Title != "Stub stub_a" {
			t.Errorf("Title = %q", info.Title)
		}
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Errorf("List() not sorted: %v", ids)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("stub_dup", func() Sim { return &stubSim{id: "stub_dup"} })

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("stub_dup", func() Sim { return &stubSim{id: "stub_dup"} })
}
