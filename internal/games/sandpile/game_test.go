package sandpile

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-sandpile/internal/config"
	platformcore "github.com/vovakirdan/tui-sandpile/internal/core"
	"github.com/vovakirdan/tui-sandpile/internal/games/sandpile/core"
	"github.com/vovakirdan/tui-sandpile/internal/registry"
)

var testRuntime = platformcore.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 7}

func testConfig(w, h int, paused bool) config.SandpileConfig {
	sc := config.DefaultSandpileConfig()
	sc.Grid.Width = w
	sc.Grid.Height = h
	sc.Sim.StartPaused = paused
	sc.Burst = config.BurstConfig{Mode: config.BurstFixed, Steps: 1000}
	return sc
}

func newTestGame(t *testing.T, g *Game, w, h int, paused bool) *Game {
	t.Helper()
	g.configure(testConfig(w, h, paused), testRuntime)
	if g.field == nil || g.tooSmall {
		t.Fatalf("game not ready: field=%v tooSmall=%v", g.field, g.tooSmall)
	}
	return g
}

func read(t *testing.T, g *Game, x, y int) uint32 {
	t.Helper()
	v, err := g.field.Read(x, y)
	if err != nil {
		t.Fatalf("Read(%d, %d) failed: %v", x, y, err)
	}
	return v
}

func frame(actions ...platformcore.Action) platformcore.InputFrame {
	in := platformcore.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

func TestRegistered(t *testing.T) {
	for _, id := range []string{"sandpile", "sandpile_rain"} {
		if !registry.Exists(id) {
			t.Fatalf("%s not registered", id)
		}
		sim, err := registry.Create(id)
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", id, err)
		}
		if sim.ID() != id {
			t.Errorf("ID() = %q, want %q", sim.ID(), id)
		}
		if _, ok := sim.(registry.Persistent); !ok {
			t.Errorf("%s does not implement Persistent", id)
		}
	}
}

func TestResetFitsScreen(t *testing.T) {
	g := New()
	g.configure(config.DefaultSandpileConfig(), testRuntime)

	// Two columns per cell inside a one-cell border, below a two-line HUD
	if g.field.Width() != 39 || g.field.Height() != 20 {
		t.Errorf("field = %dx%d, want 39x20", g.field.Width(), g.field.Height())
	}
	if g.tooSmall {
		t.Error("80x24 should fit")
	}
}

func TestTooSmall(t *testing.T) {
	g := New()
	g.configure(testConfig(50, 50, false), testRuntime)
	if !g.tooSmall {
		t.Fatal("50x50 grid should not fit 80x24")
	}

	// Must not panic
	g.Step(frame(platformcore.ActionDrop))
	scr := platformcore.NewScreen(testRuntime.ScreenW, testRuntime.ScreenH)
	g.Render(scr)
	if !strings.Contains(scr.String(), "Window too small") {
		t.Error("expected too-small message")
	}
}

func TestDropAtCursor(t *testing.T) {
	g := newTestGame(t, New(), 5, 5, true)

	res := g.Step(frame(platformcore.ActionDrop))
	if got := read(t, g, 2, 2); got != core.InjectAmount {
		t.Errorf("centre = %d, want %d", got, core.InjectAmount)
	}
	if res.State.Active != 1 {
		t.Errorf("Active = %d, want 1", res.State.Active)
	}
	if !res.State.Paused {
		t.Error("expected paused state")
	}
}

func TestCursorStaysOnGrid(t *testing.T) {
	g := newTestGame(t, New(), 5, 5, true)

	for range 10 {
		g.Step(frame(platformcore.ActionLeft, platformcore.ActionUp))
	}
	if g.cursorX != 0 || g.cursorY != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", g.cursorX, g.cursorY)
	}
	for range 10 {
		g.Step(frame(platformcore.ActionRight, platformcore.ActionDown))
	}
	if g.cursorX != 4 || g.cursorY != 4 {
		t.Errorf("cursor = (%d,%d), want (4,4)", g.cursorX, g.cursorY)
	}
}

func TestAvalancheSettles(t *testing.T) {
	g := newTestGame(t, New(), 5, 5, false)

	res := g.Step(frame(platformcore.ActionDrop))
	if !res.State.Stable() {
		t.Fatalf("field not stable after a large burst, active=%d", res.State.Active)
	}
	if len(res.Settled) != 1 {
		t.Fatalf("Settled = %d avalanches, want 1", len(res.Settled))
	}

	av := res.Settled[0]
	if av.Topples == 0 {
		t.Error("expected topples")
	}
	if av.Generations != g.field.Generation() {
		t.Errorf("Generations = %d, want %d", av.Generations, g.field.Generation())
	}
	if g.field.Mass()+uint64(av.Lost) != core.InjectAmount {
		t.Errorf("mass %d + lost %d != %d", g.field.Mass(), av.Lost, core.InjectAmount)
	}

	// Nothing left to report
	res = g.Step(frame())
	if len(res.Settled) != 0 {
		t.Errorf("unexpected avalanche on quiet tick: %+v", res.Settled)
	}
}

func TestSmallDropReportsNothing(t *testing.T) {
	g := newTestGame(t, New(), 5, 5, false)
	g.cfg.Sim.SeedCenter = 3
	g.Step(frame(platformcore.ActionRestart))

	// Seeding 3 grains queues the centre but never topples it
	res := g.Step(frame())
	if len(res.Settled) != 0 {
		t.Errorf("stable seed reported avalanche: %+v", res.Settled)
	}
	if got := read(t, g, 2, 2); got != 3 {
		t.Errorf("centre = %d, want 3", got)
	}
}

func TestPausedSingleStep(t *testing.T) {
	g := newTestGame(t, New(), 5, 5, true)

	g.Step(frame(platformcore.ActionDrop))
	g.Step(frame())
	if g.field.Generation() != 0 {
		t.Fatalf("paused field advanced to generation %d", g.field.Generation())
	}

	g.Step(frame(platformcore.ActionStep))
	if g.field.Generation() != 1 {
		t.Errorf("Generation = %d after one step, want 1", g.field.Generation())
	}
	if got := read(t, g, 2, 2); got != core.InjectAmount-core.ToppleAmount {
		t.Errorf("centre = %d, want %d", got, core.InjectAmount-core.ToppleAmount)
	}

	res := g.Step(frame(platformcore.ActionPause))
	if res.State.Paused {
		t.Error("pause toggle did not resume")
	}
}

func TestLineFromAnchor(t *testing.T) {
	g := newTestGame(t, New(), 5, 5, true)

	g.Step(frame(platformcore.ActionLine))
	if g.anchor == nil {
		t.Fatal("expected anchor")
	}
	g.Step(frame(platformcore.ActionLeft))
	g.Step(frame(platformcore.ActionLeft))
	g.Step(frame(platformcore.ActionLine))

	if g.anchor != nil {
		t.Error("anchor should clear after pouring")
	}
	for x := range 3 {
		if got := read(t, g, x, 2); got != core.InjectAmount {
			t.Errorf("(%d,2) = %d, want %d", x, got, core.InjectAmount)
		}
	}
	if got := read(t, g, 3, 2); got != 0 {
		t.Errorf("(3,2) = %d, want 0", got)
	}
}

func TestPointerDrag(t *testing.T) {
	g := newTestGame(t, New(), 5, 5, true)
	ox, oy := g.originX, g.originY

	in := frame()
	in.AddPointer(platformcore.PointerEvent{Kind: platformcore.PointerPress, X: ox, Y: oy})
	in.AddPointer(platformcore.PointerEvent{Kind: platformcore.PointerDrag, X: ox + 4, Y: oy})
	in.AddPointer(platformcore.PointerEvent{Kind: platformcore.PointerRelease, X: ox + 4, Y: oy})
	g.Step(in)

	want := map[[2]int]uint32{
		{0, 0}: 2 * core.InjectAmount, // press, then line start
		{1, 0}: core.InjectAmount,
		{2, 0}: core.InjectAmount,
		{3, 0}: 0,
	}
	for p, w := range want {
		if got := read(t, g, p[0], p[1]); got != w {
			t.Errorf("(%d,%d) = %d, want %d", p[0], p[1], got, w)
		}
	}
	if g.dragging {
		t.Error("release should end the drag")
	}

	// Outside the border clamps onto the nearest cell
	in = frame()
	in.AddPointer(platformcore.PointerEvent{Kind: platformcore.PointerPress, X: 0, Y: 100})
	g.Step(in)
	if got := read(t, g, 0, 4); got != core.InjectAmount {
		t.Errorf("(0,4) = %d, want %d", got, core.InjectAmount)
	}
}

func TestRestartClears(t *testing.T) {
	g := newTestGame(t, New(), 5, 5, false)
	g.Step(frame(platformcore.ActionDrop))

	res := g.Step(frame(platformcore.ActionRestart))
	if res.State.Grains != 0 || res.State.Generation != 0 || res.State.Active != 0 {
		t.Errorf("state after restart = %+v", res.State)
	}
}

func TestSaveLoadState(t *testing.T) {
	sc := testConfig(7, 7, false)
	sc.Burst.Steps = 1

	g1 := New()
	g1.configure(sc, testRuntime)
	g1.Step(frame(platformcore.ActionDrop))
	g1.Step(frame(platformcore.ActionDrop))

	data, err := g1.SaveState()
	if err != nil {
		t.Fatalf("SaveState() failed: %v", err)
	}

	g2 := New()
	g2.configure(testConfig(5, 5, false), testRuntime)
	g2.cfg.Burst.Steps = 1
	g2.burst = config.NewBurstManager(g2.cfg.Burst)
	if err := g2.LoadState(data); err != nil {
		t.Fatalf("LoadState() failed: %v", err)
	}
	if g2.field.Width() != 7 || g2.field.Height() != 7 {
		t.Fatalf("restored field = %dx%d, want 7x7", g2.field.Width(), g2.field.Height())
	}

	for range 50 {
		g1.Step(frame())
		g2.Step(frame())
	}
	if !slices.Equal(g1.field.Grid().Counts(), g2.field.Grid().Counts()) {
		t.Error("restored game diverged")
	}
	if g1.field.Generation() != g2.field.Generation() {
		t.Errorf("Generation %d vs %d", g1.field.Generation(), g2.field.Generation())
	}

	if err := g2.LoadState([]byte("junk")); !errors.Is(err, core.ErrBadSnapshot) {
		t.Errorf("LoadState(junk) = %v, want ErrBadSnapshot", err)
	}
}

func TestRestartDropsOversizedField(t *testing.T) {
	g := New()
	g.configure(config.DefaultSandpileConfig(), testRuntime)

	big, err := core.New(200, 100)
	if err != nil {
		t.Fatalf("core.New() failed: %v", err)
	}
	if err := big.InjectPoint(100, 50); err != nil {
		t.Fatalf("InjectPoint() failed: %v", err)
	}
	data, err := big.Snapshot().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() failed: %v", err)
	}
	if err := g.LoadState(data); err != nil {
		t.Fatalf("LoadState() failed: %v", err)
	}
	if !g.tooSmall {
		t.Fatal("a 200x100 field should not fit 80x24")
	}

	res := g.Step(frame(platformcore.ActionRestart))
	if g.tooSmall {
		t.Error("restart should leave a field that fits")
	}
	if g.field.Width() != 39 || g.field.Height() != 20 {
		t.Errorf("field after restart = %dx%d, want 39x20", g.field.Width(), g.field.Height())
	}
	if res.State.Grains != 0 || res.State.Generation != 0 {
		t.Errorf("state after restart = %+v", res.State)
	}
}

func TestSeedCenterClamped(t *testing.T) {
	sc := testConfig(5, 5, true)
	sc.Sim.SeedCenter = config.MaxSeedCenter + 1000

	g := New()
	g.configure(sc, testRuntime) // must not panic

	if got := read(t, g, 2, 2); got != config.MaxSeedCenter {
		t.Errorf("centre = %d, want %d", got, uint32(config.MaxSeedCenter))
	}
}

func TestRainDeterminism(t *testing.T) {
	sc := testConfig(20, 10, false)
	sc.Rain = config.RainConfig{Every: 1, Drops: 2}
	sc.Burst.Steps = 3

	g1 := NewRain()
	g1.configure(sc, testRuntime)
	g2 := NewRain()
	g2.configure(sc, testRuntime)

	for range 200 {
		g1.Step(frame())
		g2.Step(frame())
	}

	if g1.field.Mass() == 0 {
		t.Fatal("rain dropped nothing")
	}
	if !slices.Equal(g1.field.Grid().Counts(), g2.field.Grid().Counts()) {
		t.Error("same seed produced different fields")
	}
	if g1.field.Generation() != g2.field.Generation() {
		t.Errorf("Generation %d vs %d", g1.field.Generation(), g2.field.Generation())
	}
}

func TestRender(t *testing.T) {
	g := newTestGame(t, New(), 5, 5, true)
	g.Step(frame(platformcore.ActionDrop))

	scr := platformcore.NewScreen(testRuntime.ScreenW, testRuntime.ScreenH)
	g.Render(scr)

	if !strings.Contains(scr.Row(0), "Sandpile") {
		t.Errorf("HUD missing title: %q", scr.Row(0))
	}
	if !strings.Contains(scr.Row(0), "PAUSED") {
		t.Errorf("HUD missing pause flag: %q", scr.Row(0))
	}

	// Cursor brackets on the centre cell
	sx, sy := g.originX+2*g.cfg.Grid.CellWidth, g.originY+2
	if scr.Get(sx, sy) != '[' || scr.Get(sx+1, sy) != ']' {
		t.Errorf("cursor = %q%q", scr.Get(sx, sy), scr.Get(sx+1, sy))
	}

	// Border corner
	if scr.Get(g.originX-1, g.originY-1) != '┌' {
		t.Errorf("corner = %q", scr.Get(g.originX-1, g.originY-1))
	}

	// Overloaded cell next to the cursor uses the full block
	g.cursorX = 0
	g.Render(scr)
	if scr.Get(sx, sy) != '█' {
		t.Errorf("overloaded glyph = %q", scr.Get(sx, sy))
	}
	if scr.GetCell(sx, sy).Color != platformcore.ColorBrightRed {
		t.Errorf("overloaded color = %v", scr.GetCell(sx, sy).Color)
	}
}
