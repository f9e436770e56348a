package config

import (
	_ "embed"
)

//go:embed defaults/sandpile.yaml
var defaultSandpileYAML []byte

// DefaultSandpileConfig returns the default sandpile configuration.
func DefaultSandpileConfig() SandpileConfig {
	return SandpileConfig{
		Grid: GridConfig{
			Width:     0,
			Height:    0,
			CellWidth: 2,
		},
		Sim: SimConfig{
			StartPaused: false,
			SeedCenter:  0,
		},
		Burst: BurstConfig{
			Mode:       BurstFixed,
			Steps:      4,
			MinSteps:   1,
			MaxSteps:   64,
			SaturateAt: 2000,
		},
		Rain: RainConfig{
			Every: 6,
			Drops: 1,
		},
		Palette: PaletteConfig{
			Levels:     []string{"gray", "blue", "cyan", "yellow"},
			Overloaded: "bright_red",
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a simulation.
func GetDefaultYAML(simID string) []byte {
	switch simID {
	case "sandpile", "sandpile_rain":
		return defaultSandpileYAML
	default:
		return nil
	}
}
