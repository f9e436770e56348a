package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-sandpile/internal/core"
)

// ansiCodes holds the 256-color code for each core.Color, indexed by value.
// An empty code renders without a foreground color.
var ansiCodes = [...]string{
	core.ColorDefault:       "",
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
}

var cellStyles = buildCellStyles()

func buildCellStyles() []lipgloss.Style {
	styles := make([]lipgloss.Style, len(ansiCodes))
	for i, code := range ansiCodes {
		styles[i] = lipgloss.NewStyle()
		if code != "" {
			styles[i] = styles[i].Foreground(lipgloss.Color(code))
		}
	}
	return styles
}

// styleFor returns the style of a color, falling back to unstyled output.
func styleFor(c core.Color) lipgloss.Style {
	if int(c) < len(cellStyles) {
		return cellStyles[c]
	}
	return cellStyles[core.ColorDefault]
}

// RenderScreen converts a Screen buffer to a styled string for display.
// A grid row is mostly long stretches of one grain level, so each row is
// emitted as runs of equal color with one escape sequence per run.
func RenderScreen(s *core.Screen) string {
	w, h := s.Width(), s.Height()

	var sb strings.Builder
	sb.Grow(w*h*2 + h)

	run := make([]rune, 0, w)
	for y := range h {
		if y > 0 {
			sb.WriteByte('\n')
		}

		run = run[:0]
		runColor := core.ColorDefault
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runColor == core.ColorDefault {
				sb.WriteString(string(run))
			} else {
				sb.WriteString(styleFor(runColor).Render(string(run)))
			}
			run = run[:0]
		}

		for x := range w {
			cell := s.GetCell(x, y)
			if cell.Color != runColor {
				flush()
				runColor = cell.Color
			}
			run = append(run, cell.Rune)
		}
		flush()
	}
	return sb.String()
}
