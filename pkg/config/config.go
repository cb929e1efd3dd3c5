// Package config provides configuration loading and management for fractalifs.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalidGeometry is returned when image and block sizes do not tile.
var ErrInvalidGeometry = errors.New("invalid block geometry")

// Geometry fixes the image side length and the range/domain block sizes.
// It is a plain value: every component receives its own copy, so several
// geometries can be used side by side.
type Geometry struct {
	// ImageSize is the side length N of the square image
	ImageSize int `yaml:"imageSize"`

	// RangeSize is the side length R of a range block
	RangeSize int `yaml:"rangeSize"`

	// DomainSize is the side length D of a domain block (always 2R)
	DomainSize int `yaml:"domainSize"`
}

// DefaultGeometry returns the 512/4/8 geometry.
func DefaultGeometry() Geometry {
	return Geometry{ImageSize: 512, RangeSize: 4, DomainSize: 8}
}

// Validate checks that range and domain blocks tile the image exactly.
func (g Geometry) Validate() error {
	if g.ImageSize <= 0 || g.RangeSize <= 0 || g.DomainSize <= 0 {
		return fmt.Errorf("%w: sizes must be positive (image %d, range %d, domain %d)",
			ErrInvalidGeometry, g.ImageSize, g.RangeSize, g.DomainSize)
	}
	if g.DomainSize != 2*g.RangeSize {
		return fmt.Errorf("%w: domain size %d must be twice the range size %d",
			ErrInvalidGeometry, g.DomainSize, g.RangeSize)
	}
	if g.ImageSize%g.RangeSize != 0 {
		return fmt.Errorf("%w: image size %d not divisible by range size %d",
			ErrInvalidGeometry, g.ImageSize, g.RangeSize)
	}
	if g.ImageSize%g.DomainSize != 0 {
		return fmt.Errorf("%w: image size %d not divisible by domain size %d",
			ErrInvalidGeometry, g.ImageSize, g.DomainSize)
	}
	return nil
}

// Pixels is the number of samples in one image (N²).
func (g Geometry) Pixels() int { return g.ImageSize * g.ImageSize }

// RangeBlocksPerSide is N/R.
func (g Geometry) RangeBlocksPerSide() int { return g.ImageSize / g.RangeSize }

// NumRangeBlocks is (N/R)², the length of every compressed representation.
func (g Geometry) NumRangeBlocks() int {
	n := g.RangeBlocksPerSide()
	return n * n
}

// DomainBlocksPerSide is N/D.
func (g Geometry) DomainBlocksPerSide() int { return g.ImageSize / g.DomainSize }

// NumDomainBlocks is (N/D)².
func (g Geometry) NumDomainBlocks() int {
	n := g.DomainBlocksPerSide()
	return n * n
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Geometry holds the image and block sizes
	Geometry Geometry `yaml:"geometry"`

	// Decoding parameters
	Decode struct {
		// Iterations is the number of attractor iterations
		Iterations int `yaml:"iterations"`

		// Seed initializes the noise generator for the starting image
		Seed uint32 `yaml:"seed"`
	} `yaml:"decode"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for the block searches
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// SaveIterations writes one image per decoding iteration
		SaveIterations bool `yaml:"saveIterations"`

		// IterationsDir is where iteration frames are written
		IterationsDir string `yaml:"iterationsDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Geometry = DefaultGeometry()

	cfg.Decode.Iterations = 8
	cfg.Decode.Seed = 1234

	cfg.Processing.NumCores = runtime.NumCPU()

	cfg.Output.Verbose = false
	cfg.Output.SaveIterations = false
	cfg.Output.IterationsDir = "iterations"

	return cfg
}

// Validate checks the geometry and the decoding parameters.
func (c *Config) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	if c.Decode.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", c.Decode.Iterations)
	}
	if c.Processing.NumCores < 1 {
		return fmt.Errorf("numCores must be at least 1, got %d", c.Processing.NumCores)
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
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
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
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
