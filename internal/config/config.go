// Package config holds the explicit run configuration: defaults, optional
// YAML file, then environment overrides, constructed once in cmd and passed
// down. There is no global settings object.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/docsmith/docsmith/internal/types"
)

// Config is the full runtime configuration.
type Config struct {
	APIKey           string  `yaml:"api_key"`
	Model            string  `yaml:"model"`
	Style            string  `yaml:"style"`
	MaxIterations    int     `yaml:"max_iterations"`
	QualityThreshold float64 `yaml:"quality_threshold"`
	Overwrite        bool    `yaml:"overwrite"`
	Concurrency      int     `yaml:"concurrency"`
	HistoryPath      string  `yaml:"history_path"`

	// Model call throughput settings.
	TimeoutSeconds     int     `yaml:"timeout_seconds"`
	RequestsPerSecond  float64 `yaml:"requests_per_second"`
	MaxConcurrentCalls int     `yaml:"max_concurrent_calls"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Style:              string(types.StyleGoogle),
		MaxIterations:      3,
		QualityThreshold:   0.8,
		Concurrency:        1,
		HistoryPath:        ".docsmith/history.db",
		TimeoutSeconds:     60,
		RequestsPerSecond:  2,
		MaxConcurrentCalls: 3,
	}
}

// Load builds the configuration: defaults, overlaid by the YAML file at
// path (skipped when path is empty), overlaid by environment variables
// (ANTHROPIC_API_KEY, DOCSMITH_MODEL).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing YAML: %w", err)
		}
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if model := os.Getenv("DOCSMITH_MODEL"); model != "" {
		cfg.Model = model
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if _, err := types.ParseStyle(c.Style); err != nil {
		return err
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.QualityThreshold <= 0 || c.QualityThreshold > 1 {
		return fmt.Errorf("quality_threshold must be in (0, 1], got %v", c.QualityThreshold)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// ParsedStyle returns the configured style as its typed value. Call after
// Validate.
func (c Config) ParsedStyle() types.Style {
	style, err := types.ParseStyle(c.Style)
	if err != nil {
		return types.StyleGoogle
	}
	return style
}

// Timeout returns the per-request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
