package sandpile

import (
	"strconv"

	platformcore "github.com/vovakirdan/tui-sandpile/internal/core"
	"github.com/vovakirdan/tui-sandpile/internal/games/sandpile/core"
)

// Glyphs indexed by grain count; anything above the threshold uses the last.
var glyphs = [...]rune{'·', '░', '▒', '▓', '█'}

var defaultLevels = [...]platformcore.Color{
	platformcore.ColorGray,
	platformcore.ColorBlue,
	platformcore.ColorCyan,
	platformcore.ColorYellow,
}

// Render draws the HUD, the bordered field and the cursor.
func (g *Game) Render(dst *platformcore.Screen) {
	g.renderHUD(dst)

	if g.tooSmall || g.field == nil {
		dst.DrawTextCentered(dst.Height()/2, "Window too small")
		dst.DrawTextCentered(dst.Height()/2+1, "Resize to continue")
		return
	}

	cw := g.cfg.Grid.CellWidth
	box := platformcore.NewRect(g.originX-1, g.originY-1, g.field.Width()*cw+2, g.field.Height()+2)
	dst.DrawBox(box, platformcore.ColorGray)

	g.renderField(dst)
	g.renderCursor(dst)
}

func (g *Game) renderHUD(dst *platformcore.Screen) {
	hud := " " + g.Title()
	if g.field != nil {
		hud += " | Gen: " + strconv.FormatUint(g.field.Generation(), 10) +
			" | Active: " + strconv.Itoa(g.field.QueueLen()) +
			" | Grains: " + strconv.FormatUint(g.field.Mass(), 10) +
			" | Burst: " + strconv.Itoa(g.lastBurst)
	}
	dst.DrawTextColored(0, 0, hud, platformcore.ColorCyan)

	if g.paused {
		label := "PAUSED "
		dst.DrawTextColored(dst.Width()-len(label), 0, label, platformcore.ColorBrightYellow)
	}

	for x := 0; x < dst.Width(); x++ {
		dst.SetColored(x, 1, '─', platformcore.ColorGray)
	}
}

func (g *Game) renderField(dst *platformcore.Screen) {
	grid := g.field.Grid()
	counts := grid.Counts()
	cw := g.cfg.Grid.CellWidth

	for y := range grid.H {
		row := counts[y*grid.W : (y+1)*grid.W]
		for x, n := range row {
			r, c := g.cellStyle(n)
			sx := g.originX + x*cw
			for i := range cw {
				dst.SetColored(sx+i, g.originY+y, r, c)
			}
		}
	}
}

// cellStyle returns the glyph and colour for a grain count.
func (g *Game) cellStyle(n uint32) (rune, platformcore.Color) {
	if n > core.Threshold {
		return glyphs[len(glyphs)-1], g.paletteColor(-1)
	}
	return glyphs[n], g.paletteColor(int(n))
}

// paletteColor resolves a configured colour name; -1 selects the overloaded colour.
func (g *Game) paletteColor(level int) platformcore.Color {
	p := g.cfg.Palette
	if level < 0 {
		if c, ok := platformcore.ParseColor(p.Overloaded); ok {
			return c
		}
		return platformcore.ColorBrightRed
	}
	if level < len(p.Levels) {
		if c, ok := platformcore.ParseColor(p.Levels[level]); ok {
			return c
		}
	}
	return defaultLevels[level]
}

func (g *Game) renderCursor(dst *platformcore.Screen) {
	cw := g.cfg.Grid.CellWidth

	if g.anchor != nil {
		dst.SetColored(g.originX+g.anchor.X*cw, g.originY+g.anchor.Y, '+', platformcore.ColorBrightMagenta)
	}

	sx := g.originX + g.cursorX*cw
	sy := g.originY + g.cursorY
	if cw >= 2 {
		dst.SetColored(sx, sy, '[', platformcore.ColorBrightWhite)
		dst.SetColored(sx+cw-1, sy, ']', platformcore.ColorBrightWhite)
		return
	}
	dst.SetColored(sx, sy, '◆', platformcore.ColorBrightWhite)
}
