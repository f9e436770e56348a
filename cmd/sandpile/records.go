package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-sandpile/internal/registry"
	"github.com/vovakirdan/tui-sandpile/internal/storage"
)

var (
	flagRecordsLimit int
	flagRecordsClear bool
)

var recordsCmd = &cobra.Command{
	Use:   "records <sim>",
	Short: "Show the largest avalanches for a simulation",
	Long: `Display the avalanches with the most topples for a simulation.

Examples:
  sandpile records sandpile
  sandpile records sandpile_rain --limit 25
  sandpile records sandpile --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runRecords,
}

func init() {
	recordsCmd.Flags().IntVar(&flagRecordsLimit, "limit", 10, "Number of avalanches to show")
	recordsCmd.Flags().BoolVar(&flagRecordsClear, "clear", false, "Delete all records for the simulation")
}

func runRecords(_ *cobra.Command, args []string) {
	simID := args[0]

	if !registry.Exists(simID) {
		fmt.Fprintf(os.Stderr, "Error: unknown simulation %q\n", simID)
		fmt.Fprintln(os.Stderr, "Run 'sandpile list' to see available simulations.")
		os.Exit(1)
	}

	sim, err := registry.Create(simID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating simulation: %v\n", err)
		os.Exit(1)
	}
	title := sim.Title()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening records database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagRecordsClear {
		if err := store.ClearAvalanches(simID); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing records: %v\n", err)
			return
		}
		fmt.Printf("Cleared avalanche records for %s.\n", title)
		return
	}

	entries, err := store.TopAvalanches(simID, flagRecordsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving records: %v\n", err)
		return
	}

	fmt.Printf("Largest Avalanches - %s\n", title)
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No avalanches recorded yet.")
		fmt.Println()
		fmt.Printf("Run 'sandpile play %s' and pile up some grains!\n", simID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %-8s  %-8s  %s\n", "Rank", "Topples", "Gens", "Lost", "Date")
	fmt.Printf("  %-4s  %-10s  %-8s  %-8s  %s\n", "----", "-------", "----", "----", "----")
	for i, e := range entries {
		fmt.Printf("  %-4d  %-10d  %-8d  %-8d  %s\n",
			i+1, e.Topples, e.Generations, e.Lost, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.GetSimStats(simID); err == nil {
		fmt.Println()
		fmt.Printf("Avalanches: %d  Avg topples: %.1f  Deepest: %d gens  Grains lost: %d\n",
			stats.Avalanches, stats.AvgTopples, stats.MaxGenerations, stats.TotalLost)
	}
}
