package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-sandpile/internal/config"
)

func TestValidateStabilize(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		grains   int64
		maxSteps int
		wantErr  bool
	}{
		{"defaults", 1000, 1000, 1000, 0, false},
		{"zero grains", 5, 5, 0, 0, false},
		{"cell capacity", 5, 5, math.MaxUint32, 0, false},
		{"negative grains", 5, 5, -5, 0, true},
		{"past cell capacity", 5, 5, math.MaxUint32 + 1, 0, true},
		{"zero width", 0, 5, 10, 0, true},
		{"negative max steps", 5, 5, 10, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStabilize(tt.w, tt.h, tt.grains, tt.maxSteps)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateStabilize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStabilizeRejectsBadGrains(t *testing.T) {
	flagStabWidth, flagStabHeight, flagStabGrains, flagStabMaxSteps = 5, 5, -5, 0
	t.Cleanup(func() {
		flagStabWidth, flagStabHeight, flagStabGrains = 1000, 1000, 1000
	})

	err := runStabilize(stabilizeCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "--grains") {
		t.Errorf("runStabilize() = %v, want a --grains error", err)
	}
}

func TestWriteConfigDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := writeConfig(&buf, "sandpile", true); err != nil {
		t.Fatalf("writeConfig() failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), config.GetDefaultYAML("sandpile")) {
		t.Error("--default should print the embedded file verbatim")
	}

	if err := writeConfig(&buf, "pong", true); err == nil {
		t.Error("expected error for unknown simulation")
	}
}

func TestWriteConfigEffective(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sandpile.yaml")
	if err := os.WriteFile(path, []byte("grid:\n  width: 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	flagConfig, flagSpeed = path, string(config.SpeedTurbo)
	t.Cleanup(func() { flagConfig, flagSpeed = "", "" })

	var buf bytes.Buffer
	if err := writeConfig(&buf, "sandpile_rain", false); err != nil {
		t.Fatalf("writeConfig() failed: %v", err)
	}

	var got config.SandpileConfig
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got.Grid.Width != 50 {
		t.Errorf("Grid.Width = %d, want 50", got.Grid.Width)
	}
	if got.Burst.Mode != config.BurstFixed || got.Burst.Steps != 64 {
		t.Errorf("Burst = %+v, want fixed 64 from the turbo preset", got.Burst)
	}
}

func TestRootExamplesUseRealFlags(t *testing.T) {
	for _, line := range strings.Split(rootCmd.Long, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "sandpile" {
			continue
		}
		sub, _, err := rootCmd.Find(fields[1:2])
		if err != nil || sub == rootCmd {
			t.Errorf("example %q names no subcommand", line)
			continue
		}
		for _, f := range fields[2:] {
			name, ok := strings.CutPrefix(f, "--")
			if !ok {
				continue
			}
			if sub.Flags().Lookup(name) == nil && rootCmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("example %q uses unknown flag --%s", strings.TrimSpace(line), name)
			}
		}
	}
}
