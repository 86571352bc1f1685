// Package config handles loading and managing Farmwatch configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

// Config is the top-level scoring configuration.
type Config struct {
	Scoring ScoringConfig `yaml:"scoring"`
	Limits  LimitsConfig  `yaml:"limits"`
}

// ScoringConfig controls the distress engine.
type ScoringConfig struct {
	// LookbackDays is the rolling signal window. Defaults to 30.
	LookbackDays int `yaml:"lookback_days"`
	// Weights overrides the per-factor weights. Keys are factor names
	// (INVENTORY_STAGNATION, SALES_PERFORMANCE, ...); values must sum
	// to 100. Empty means the standard 25/25/20/15/15 split.
	Weights map[string]float64 `yaml:"weights"`
}

// LimitsConfig caps result page sizes.
type LimitsConfig struct {
	RankLimit      int `yaml:"rank_limit"`
	RecommendLimit int `yaml:"recommend_limit"`
}

// DefaultConfig returns a Config with standard values.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			LookbackDays: distress.DefaultLookbackDays,
			Weights:      map[string]float64{},
		},
		Limits: LimitsConfig{
			RankLimit:      distress.DefaultRankLimit,
			RecommendLimit: distress.DefaultRecommendLimit,
		},
	}
}

// Load reads a config file from the given path. A missing file returns
// the default config; an invalid weight set is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if _, err := cfg.FactorWeights(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Scoring.LookbackDays <= 0 {
		return nil, fmt.Errorf("parsing config: lookback_days must be positive")
	}

	return cfg, nil
}

// FactorWeights resolves the configured weights to the engine's typed
// weight set, validating the sum.
func (c *Config) FactorWeights() (distress.Weights, error) {
	if len(c.Scoring.Weights) == 0 {
		return distress.DefaultWeights(), nil
	}

	w := make(distress.Weights, len(c.Scoring.Weights))
	for name, weight := range c.Scoring.Weights {
		w[distress.Factor(name)] = weight
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
