package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-sandpile/internal/storage"
)

var (
	flagSnapshotsSim    string
	flagSnapshotsLimit  int
	flagSnapshotsDelete int64
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List saved field snapshots",
	Long: `List snapshots saved with Ctrl+S or 'sandpile stabilize --save',
newest first.

Examples:
  sandpile snapshots
  sandpile snapshots --sim sandpile_rain
  sandpile snapshots --delete 7`,
	Args: cobra.NoArgs,
	Run:  runSnapshots,
}

func init() {
	snapshotsCmd.Flags().StringVar(&flagSnapshotsSim, "sim", "", "Only list snapshots of this simulation")
	snapshotsCmd.Flags().IntVar(&flagSnapshotsLimit, "limit", 20, "Number of snapshots to show")
	snapshotsCmd.Flags().Int64Var(&flagSnapshotsDelete, "delete", 0, "Delete the snapshot with this ID")
}

func runSnapshots(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening records database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagSnapshotsDelete > 0 {
		if err := store.DeleteSnapshot(flagSnapshotsDelete); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Printf("Deleted snapshot #%d.\n", flagSnapshotsDelete)
		return
	}

	entries, err := store.ListSnapshots(flagSnapshotsSim, flagSnapshotsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving snapshots: %v\n", err)
		return
	}

	if len(entries) == 0 {
		fmt.Println("No snapshots saved yet.")
		return
	}

	fmt.Printf("  %-5s  %-14s  %-16s  %-9s  %-10s  %-10s  %s\n", "ID", "Sim", "Name", "Size", "Gen", "Grains", "Date")
	fmt.Printf("  %-5s  %-14s  %-16s  %-9s  %-10s  %-10s  %s\n", "--", "---", "----", "----", "---", "------", "----")
	for _, e := range entries {
		size := fmt.Sprintf("%dx%d", e.Width, e.Height)
		fmt.Printf("  %-5d  %-14s  %-16s  %-9s  %-10d  %-10d  %s\n",
			e.ID, e.SimID, e.Name, size, e.Generation, e.Grains, e.CreatedAt.Format("2006-01-02 15:04"))
	}
}
