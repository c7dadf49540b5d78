package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"neuroplex/internal/model"
)

// RunConfig is the YAML description of one simulation run: the circuit file
// to load, how far to advance it and which stimuli to feed.
type RunConfig struct {
	RunID           string               `yaml:"run_id"`
	Circuit         string               `yaml:"circuit"`
	Steps           int                  `yaml:"steps"`
	TickDeadlineMS  int                  `yaml:"tick_deadline_ms"`
	ContinueOnFault bool                 `yaml:"continue_on_fault"`
	Stimuli         []model.StimulusSpec `yaml:"stimuli"`
}

func (c RunConfig) TickDeadline() time.Duration {
	return time.Duration(c.TickDeadlineMS) * time.Millisecond
}

func loadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, err
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("parse run config %s: %w", path, err)
	}
	if cfg.Circuit == "" {
		return RunConfig{}, fmt.Errorf("run config %s: circuit path is required", path)
	}
	if cfg.Steps <= 0 {
		return RunConfig{}, fmt.Errorf("run config %s: steps must be > 0", path)
	}
	if cfg.TickDeadlineMS < 0 {
		return RunConfig{}, fmt.Errorf("run config %s: tick_deadline_ms must be >= 0", path)
	}
	return cfg, nil
}
