// Package config provides configuration loading and management for morphoseg.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"morphoseg/pkg/connectivity"
	"morphoseg/pkg/morphology"
	"morphoseg/pkg/reconstruction"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores bounds the goroutines used for slice loading and filtering
		NumCores int `yaml:"numCores"`

		// Connectivity is 4 or 8 for single slices, 6, 18 or 26 for stacks.
		// 0 picks the largest neighbourhood for the stack depth.
		Connectivity int `yaml:"connectivity"`

		// ComputeDams keeps watershed lines as label 0 between basins
		ComputeDams bool `yaml:"computeDams"`

		// BinaryMarkers labels the marker stack before flooding
		BinaryMarkers bool `yaml:"binaryMarkers"`

		// GradientRadius floods the morphological gradient of the input
		// computed with this radius; 0 floods the input itself
		GradientRadius int `yaml:"gradientRadius"`

		// GradientShape is the structuring element used for the gradient
		GradientShape string `yaml:"gradientShape"`

		// Direction is "dilation" or "erosion" for reconstruction
		Direction string `yaml:"direction"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging, including progress events
		Verbose bool `yaml:"verbose"`

		// LogFile sends log messages to a rotating file instead of stderr
		LogFile string `yaml:"logFile"`

		// LogMaxSizeMB is the size at which the log file is rotated
		LogMaxSizeMB int `yaml:"logMaxSizeMB"`

		// LogMaxAgeDays is how long rotated log files are kept
		LogMaxAgeDays int `yaml:"logMaxAgeDays"`

		// SaveIntermediaryResults writes the flooding relief and marker
		// labels next to the result
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir is where intermediary stacks are written
		IntermediaryDir string `yaml:"intermediaryDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.Connectivity = 0
	cfg.Processing.ComputeDams = true
	cfg.Processing.BinaryMarkers = false
	cfg.Processing.GradientRadius = 0
	cfg.Processing.GradientShape = morphology.Disk.String()
	cfg.Processing.Direction = reconstruction.Dilation.String()

	cfg.Output.Verbose = false
	cfg.Output.LogMaxSizeMB = 100
	cfg.Output.LogMaxAgeDays = 30
	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"

	return cfg
}

// Validate checks that every value can be used by the pipeline.
func (c *Config) Validate() error {
	var errs []error
	p := c.Processing
	if p.NumCores < 0 {
		errs = append(errs, fmt.Errorf("numCores must be non-negative, got %d", p.NumCores))
	}
	if p.Connectivity != 0 {
		if err := connectivity.Connectivity(p.Connectivity).Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.GradientRadius < 0 {
		errs = append(errs, fmt.Errorf("gradientRadius must be non-negative, got %d", p.GradientRadius))
	}
	if _, err := morphology.ParseShape(p.GradientShape); err != nil {
		errs = append(errs, err)
	}
	if _, err := reconstruction.ParseDirection(p.Direction); err != nil {
		errs = append(errs, err)
	}
	if c.Output.LogMaxSizeMB < 0 || c.Output.LogMaxAgeDays < 0 {
		errs = append(errs, fmt.Errorf("log rotation limits must be non-negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
