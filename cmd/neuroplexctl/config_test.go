package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunConfig(t *testing.T) {
	path := writeConfig(t, `
run_id: nightly
circuit: circuits/antennal-lobe.json
steps: 100
tick_deadline_ms: 250
continue_on_fault: true
stimuli:
  - module: al
    name: odor
    kind: array
    frames:
      - [0.5, 1.0]
      - [0.25, 0.5]
    hold: true
`)

	cfg, err := loadRunConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RunID != "nightly" || cfg.Circuit != "circuits/antennal-lobe.json" || cfg.Steps != 100 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.ContinueOnFault {
		t.Fatal("continue_on_fault not parsed")
	}
	if cfg.TickDeadline() != 250*time.Millisecond {
		t.Fatalf("unexpected deadline: %v", cfg.TickDeadline())
	}

	if len(cfg.Stimuli) != 1 {
		t.Fatalf("unexpected stimuli: %+v", cfg.Stimuli)
	}
	stim := cfg.Stimuli[0]
	if stim.Module != "al" || stim.Name != "odor" || stim.Kind != "array" || !stim.Hold {
		t.Fatalf("unexpected stimulus: %+v", stim)
	}
	if want := [][]float64{{0.5, 1.0}, {0.25, 0.5}}; !reflect.DeepEqual(stim.Frames, want) {
		t.Fatalf("frames mismatch: got=%v want=%v", stim.Frames, want)
	}
}

func TestLoadRunConfigRejections(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing circuit", "steps: 10\n"},
		{"zero steps", "circuit: c.json\n"},
		{"negative deadline", "circuit: c.json\nsteps: 10\ntick_deadline_ms: -5\n"},
		{"bad yaml", "circuit: [unterminated\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := loadRunConfig(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := loadRunConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}
