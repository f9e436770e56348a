// Package tui provides the Bubble Tea integration for the sandpile platform.
// It handles the terminal UI loop, input mapping, and simulation orchestration.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a simulation tick. ID names the tick loop that
// produced it, so a loop left over from a closed simulation can be dropped.
type TickMsg struct {
	ID   int64
	Time time.Time
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int, id int64) tea.Cmd {
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{ID: id, Time: t}
	})
}
