package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-sandpile/internal/config"
	"github.com/vovakirdan/tui-sandpile/internal/platform/tui"
	"github.com/vovakirdan/tui-sandpile/internal/registry"
	"github.com/vovakirdan/tui-sandpile/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play <sim>",
	Short: "Run a simulation",
	Long: `Start the specified simulation.

Controls:
  Arrows/hjkl  - Move cursor
  Space        - Drop a grain at the cursor
  Enter        - Set line anchor, press again to pour a line
  Mouse        - Click or drag to pour grains
  P            - Pause / resume
  N            - Single step while paused
  R            - Clear the field
  Ctrl+S       - Save snapshot
  Ctrl+O       - Load latest snapshot
  Q/Ctrl+C     - Quit

Speed presets:
  slow      - 1 generation per tick
  normal    - 4 generations per tick
  fast      - 16 generations per tick
  turbo     - 64 generations per tick
  adaptive  - burst grows with the number of active cells

Examples:
  sandpile play sandpile
  sandpile play sandpile_rain --seed 42
  sandpile play sandpile --speed adaptive
  sandpile play sandpile --config ./my-sandpile.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, args []string) {
	simID := args[0]

	if !registry.Exists(simID) {
		fmt.Fprintf(os.Stderr, "Error: unknown simulation %q\n", simID)
		fmt.Fprintln(os.Stderr, "Run 'sandpile list' to see available simulations.")
		os.Exit(1)
	}

	// Surface config errors here; inside the TUI they fall back to defaults.
	if _, err := config.LoadSandpile(flagConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	cfg := runtimeConfig(width, height)

	sim, err := registry.Create(simID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating simulation: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open records database: %v\n", err)
		// Continue without storage; snapshots and records are disabled
		store = nil
	}

	runErr := tui.Run(sim, store, cfg)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", runErr)
		os.Exit(1)
	}
}
