// Package config loads experiment definitions from JSON or YAML files.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/variantgen/internal/monitoring"
	"github.com/banshee-data/variantgen/internal/rng"
	"github.com/banshee-data/variantgen/internal/search"
	"github.com/banshee-data/variantgen/internal/variant"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// ExperimentConfig is the on-disk description of one experiment. Config holds
// the search space, with domains written declaratively, e.g.
//
//	config:
//	  lr: {loguniform: [0.0001, 0.1]}
//	  layers: {grid_int_range: "1:4:1"}
type ExperimentConfig struct {
	Name               string           `json:"name" yaml:"name"`
	NumSamples         *int             `json:"num_samples,omitempty" yaml:"num_samples,omitempty"`
	Seed               *int64           `json:"seed,omitempty" yaml:"seed,omitempty"`
	RNGMode            string           `json:"rng_mode,omitempty" yaml:"rng_mode,omitempty"`
	ConstantGridSearch bool             `json:"constant_grid_search,omitempty" yaml:"constant_grid_search,omitempty"`
	MaxConcurrent      int              `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
	TrialIDPrefix      string           `json:"trial_id_prefix,omitempty" yaml:"trial_id_prefix,omitempty"`
	PointsToEvaluate   []map[string]any `json:"points_to_evaluate,omitempty" yaml:"points_to_evaluate,omitempty"`
	Config             map[string]any   `json:"config" yaml:"config"`
}

// LoadExperimentConfig loads an ExperimentConfig from a .json, .yaml or .yml
// file no larger than 1MB and validates it.
func LoadExperimentConfig(path string) (*ExperimentConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if ext == ".json" {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseJSON decodes and validates a JSON experiment. Integral numbers in the
// space and the points become int, all others float64.
func ParseJSON(data []byte) (*ExperimentConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	cfg := &ExperimentConfig{}
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if _, err := normalize(cfg.Config); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	for _, p := range cfg.PointsToEvaluate {
		if _, err := normalize(p); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	return finish(cfg)
}

// ParseYAML decodes and validates a YAML experiment.
func ParseYAML(data []byte) (*ExperimentConfig, error) {
	cfg := &ExperimentConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return finish(cfg)
}

func finish(cfg *ExperimentConfig) (*ExperimentConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the experiment settings and that the search space builds.
func (c *ExperimentConfig) Validate() error {
	if c.NumSamples != nil && *c.NumSamples < 0 {
		return fmt.Errorf("num_samples must be non-negative, got %d", *c.NumSamples)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must be non-negative, got %d", c.MaxConcurrent)
	}
	if _, err := c.Mode(); err != nil {
		return err
	}

	spec, err := c.Space()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := variant.Validate(spec); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// GetNumSamples returns num_samples or the default of 1.
func (c *ExperimentConfig) GetNumSamples() int {
	if c.NumSamples == nil {
		return 1
	}
	return *c.NumSamples
}

// Mode returns the random generator family named by rng_mode. The default is
// modern.
func (c *ExperimentConfig) Mode() (rng.Mode, error) {
	if c.RNGMode == "" {
		return rng.ModeModern, nil
	}
	m, ok := rng.ParseMode(c.RNGMode)
	if !ok {
		return 0, fmt.Errorf("invalid rng_mode %q: expected modern or legacy", c.RNGMode)
	}
	return m, nil
}

// Space builds the search space from the config section. Every call returns
// fresh domains.
func (c *ExperimentConfig) Space() (map[string]any, error) {
	if c.Config == nil {
		return map[string]any{}, nil
	}
	return BuildSpace(c.Config)
}

// Experiment returns the search.Experiment described by c.
func (c *ExperimentConfig) Experiment() (search.Experiment, error) {
	spec, err := c.Space()
	if err != nil {
		return search.Experiment{}, err
	}
	return search.Experiment{Name: c.Name, Config: spec, NumSamples: c.GetNumSamples()}, nil
}

// SearchOptions returns the searcher settings described by c. A nil logf uses
// monitoring.Logf.
func (c *ExperimentConfig) SearchOptions(logf monitoring.LogFunc) (search.Options, error) {
	mode, err := c.Mode()
	if err != nil {
		return search.Options{}, err
	}

	random := rng.Unset()
	if c.Seed != nil {
		random = rng.Seed(*c.Seed)
	}
	return search.Options{
		PointsToEvaluate:   c.PointsToEvaluate,
		ConstantGridSearch: c.ConstantGridSearch,
		MaxConcurrent:      c.MaxConcurrent,
		Random:             random,
		RNG:                rng.Provider{Mode: mode},
		TrialIDPrefix:      c.TrialIDPrefix,
		Logf:               logf,
	}, nil
}
