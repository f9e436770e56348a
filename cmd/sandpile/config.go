package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-sandpile/internal/config"
	"github.com/vovakirdan/tui-sandpile/internal/registry"
)

var flagConfigDefault bool

var configCmd = &cobra.Command{
	Use:   "config [sim]",
	Short: "Print simulation configuration as YAML",
	Long: `Print the configuration a simulation would start with, after the
search order (--config, ~/.sandpile/configs, ./configs, built-in) and any
--speed preset are applied.

With --default, print the built-in default file instead. Redirect it to
~/.sandpile/configs/sandpile.yaml to start a custom config.

Examples:
  sandpile config
  sandpile config --speed adaptive
  sandpile config --default > ~/.sandpile/configs/sandpile.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		simID := "sandpile"
		if len(args) == 1 {
			simID = args[0]
		}
		return writeConfig(cmd.OutOrStdout(), simID, flagConfigDefault)
	},
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigDefault, "default", false, "Print the built-in default config")
}

// writeConfig prints either the embedded default or the effective config.
func writeConfig(w io.Writer, simID string, defaults bool) error {
	if !registry.Exists(simID) {
		return fmt.Errorf("unknown simulation %q, run 'sandpile list'", simID)
	}

	if defaults {
		data := config.GetDefaultYAML(simID)
		if data == nil {
			return fmt.Errorf("no default config for %q", simID)
		}
		_, err := w.Write(data)
		return err
	}

	cfg, err := config.LoadSandpile(flagConfig)
	if err != nil {
		return err
	}
	if flagSpeed != "" {
		config.ApplySpeedPreset(&cfg, config.SpeedPreset(flagSpeed))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	return enc.Close()
}
