package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-sandpile/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available simulations",
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	sims := registry.List()

	if len(sims) == 0 {
		fmt.Println("No simulations available.")
		return
	}

	fmt.Println("Available simulations:")
	fmt.Println()

	idWidth := len("ID")
	for _, s := range sims {
		idWidth = max(idWidth, len(s.ID))
	}

	fmt.Printf("  %-*s  %s\n", idWidth, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", idWidth, "--", "-----")
	for _, s := range sims {
		fmt.Printf("  %-*s  %s\n", idWidth, s.ID, s.Title)
	}

	fmt.Println()
	fmt.Println("Run 'sandpile play <id>' to start one.")
}
