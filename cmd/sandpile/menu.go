package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-sandpile/internal/platform/tui"
	"github.com/vovakirdan/tui-sandpile/internal/registry"
	"github.com/vovakirdan/tui-sandpile/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a simulation picker menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to start a simulation.
Leaving a simulation with Esc returns to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select simulation
  Tab          - Avalanche records
  Q            - Quit

Examples:
  sandpile menu
  sandpile menu --fps 60
  sandpile menu --db ./sandpile.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open records database: %v\n", err)
		store = nil
	}

	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	cfg := runtimeConfig(width, height)

	for {
		result, err := tui.RunMenu(store, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		cfg = result.Config

		if result.Quit {
			break
		}

		if result.WantsRecords {
			goBack, recErr := tui.RunRecords(store, cfg.ScreenW, cfg.ScreenH)
			if recErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", recErr)
			}
			if goBack {
				continue
			}
			break
		}

		if result.SimID == "" {
			break
		}

		sim, err := registry.Create(result.SimID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating simulation: %v\n", err)
			continue
		}

		// Fresh rain pattern per run unless pinned with --seed
		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		if err := tui.Run(sim, store, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", err)
		}
	}

	if store != nil {
		store.Close()
	}
}
