// sandpile is a terminal playground for the abelian sandpile model.
//
// Usage:
//
//	sandpile list               - List available simulations
//	sandpile play <sim>         - Run a simulation
//	sandpile menu               - Pick simulations interactively
//	sandpile serve              - Start SSH server for remote play
//	sandpile records <sim>      - Show the largest avalanches
//	sandpile snapshots          - List saved snapshots
//	sandpile stabilize          - Headless run to stability
//	sandpile config [sim]       - Print configuration YAML
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default: 30)
//	--seed <value>   - Set RNG seed for reproducible rain
//	--db <path>      - Set database path (default: ~/.sandpile/sandpile.db)
//	--config <path>  - Custom sandpile config YAML
//	--speed <preset> - Burst preset: slow, normal, fast, turbo, adaptive
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-sandpile/internal/config"
	"github.com/vovakirdan/tui-sandpile/internal/core"
	"github.com/vovakirdan/tui-sandpile/internal/games/sandpile"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string
	flagConfig string
	flagSpeed  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "sandpile",
	SilenceErrors: true, // main prints the error once
	Short:         "Sandpile - watch avalanches in your terminal",
	Long: `Sandpile runs the abelian sandpile model in the terminal. Drop grains,
draw lines of sand and watch avalanches spread until the pile settles.

Available commands:
  list       - Show all available simulations
  play       - Run a specific simulation directly
  menu       - Interactive simulation picker
  serve      - Start SSH server for remote play
  records    - View the largest avalanches
  snapshots  - List saved field snapshots
  stabilize  - Pour grains headless and run to stability
  config     - Print the default or effective configuration

Examples:
  sandpile list
  sandpile play sandpile --speed turbo
  sandpile menu
  sandpile serve --ssh :2222
  sandpile stabilize --width 101 --height 101 --grains 10000`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if flagSpeed != "" && !config.IsValidPreset(config.SpeedPreset(flagSpeed)) {
			return fmt.Errorf("invalid --speed %q (want slow, normal, fast, turbo or adaptive)", flagSpeed)
		}
		sandpile.SetConfigPath(flagConfig)
		sandpile.SetSpeedPreset(config.SpeedPreset(flagSpeed))
		return nil
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.sandpile/sandpile.db", "Path to records database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom sandpile config YAML")
	rootCmd.PersistentFlags().StringVar(&flagSpeed, "speed", "", "Speed preset: slow, normal, fast, turbo, adaptive")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(stabilizeCmd)
	rootCmd.AddCommand(configCmd)
}

// runtimeConfig builds the runtime config for a terminal of the given size.
func runtimeConfig(width, height int) core.RuntimeConfig {
	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     seed,
	}
}
