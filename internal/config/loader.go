package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadSandpile loads sandpile configuration.
// Search order: customPath -> ~/.sandpile/configs/sandpile.yaml -> ./configs/sandpile.yaml -> embedded default
//
// Files are decoded on top of the defaults, so a partial file only overrides
// the keys it names. The result is normalized before it is returned.
func LoadSandpile(customPath string) (SandpileConfig, error) {
	cfg, err := loadSandpile(customPath)
	cfg.Normalize()
	return cfg, err
}

func loadSandpile(customPath string) (SandpileConfig, error) {
	// Try custom path first
	if customPath != "" {
		cfg := DefaultSandpileConfig()
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("sandpile.yaml"); userCfgPath != "" {
		if cfg, ok := readOptional(userCfgPath); ok {
			return cfg, nil
		}
	}

	// Try local configs directory
	if cfg, ok := readOptional(filepath.Join("configs", "sandpile.yaml")); ok {
		return cfg, nil
	}

	// Use embedded default YAML
	cfg := DefaultSandpileConfig()
	if err := yaml.Unmarshal(defaultSandpileYAML, &cfg); err != nil {
		return DefaultSandpileConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// readOptional decodes path over the defaults. Missing or malformed files
// report false so the search can continue.
func readOptional(path string) (SandpileConfig, bool) {
	cfg := DefaultSandpileConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	return cfg, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sandpile", "configs", filename)
}

// ApplySpeedPreset modifies the config based on a speed preset.
func ApplySpeedPreset(cfg *SandpileConfig, preset SpeedPreset) {
	if preset == SpeedAdaptive {
		cfg.Burst.Mode = BurstAdaptive
		return
	}
	if n := StepsForPreset(preset); n > 0 {
		cfg.Burst.Mode = BurstFixed
		cfg.Burst.Steps = n
	}
}
