// Package config handles refinement configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshrefine/pkg/refiner"
)

// Normal synthesis modes.
const (
	NormalsKeep   = "keep"   // Use the normals the source carries
	NormalsFlat   = "flat"   // Per-vertex area-weighted normals
	NormalsSmooth = "smooth" // Per-corner normals limited by smooth_angle
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all refinement settings.
type Config struct {
	Refine  RefineConfig  `yaml:"refine"`
	Normals NormalsConfig `yaml:"normals"`
	Import  ImportConfig  `yaml:"import"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// RefineConfig holds the refiner settings.
type RefineConfig struct {
	SplitUnit   int  `yaml:"split_unit"` // Vertex budget per split, 0 disables splitting
	Triangulate bool `yaml:"triangulate"`
	SwapFaces   bool `yaml:"swap_faces"`
	Optimize    bool `yaml:"optimize"` // Deduplicate vertices across corners
}

// NormalsConfig controls normal and tangent synthesis.
type NormalsConfig struct {
	Mode        string  `yaml:"mode"`
	SmoothAngle float32 `yaml:"smooth_angle"` // Degrees
	Tangents    bool    `yaml:"tangents"`
}

// ImportConfig holds transforms applied to source meshes before refinement.
type ImportConfig struct {
	Scale          float32 `yaml:"scale"`
	SwapHandedness bool    `yaml:"swap_handedness"`
}

// BatchConfig holds batch processing settings.
type BatchConfig struct {
	Workers int `yaml:"workers"` // 0 means GOMAXPROCS
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Refine: RefineConfig{
			SplitUnit:   65000,
			Triangulate: true,
			SwapFaces:   false,
			Optimize:    true,
		},
		Normals: NormalsConfig{
			Mode:        NormalsKeep,
			SmoothAngle: 60,
			Tangents:    false,
		},
		Import: ImportConfig{
			Scale:          1.0,
			SwapHandedness: false,
		},
		Batch: BatchConfig{
			Workers: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Refine.SplitUnit < 0 {
		return fmt.Errorf("%w: refine.split_unit must not be negative, got %d", ErrInvalidConfig, c.Refine.SplitUnit)
	}
	if c.Refine.SplitUnit > 0 && c.Refine.SplitUnit < 3 {
		return fmt.Errorf("%w: refine.split_unit must hold a triangle, got %d", ErrInvalidConfig, c.Refine.SplitUnit)
	}
	switch c.Normals.Mode {
	case NormalsKeep, NormalsFlat, NormalsSmooth:
	default:
		return fmt.Errorf("%w: unknown normals.mode %q", ErrInvalidConfig, c.Normals.Mode)
	}
	if c.Normals.SmoothAngle < 0 || c.Normals.SmoothAngle > 180 {
		return fmt.Errorf("%w: normals.smooth_angle must be within [0,180], got %g", ErrInvalidConfig, c.Normals.SmoothAngle)
	}
	if c.Import.Scale <= 0 {
		return fmt.Errorf("%w: import.scale must be positive, got %g", ErrInvalidConfig, c.Import.Scale)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("%w: batch.workers must not be negative, got %d", ErrInvalidConfig, c.Batch.Workers)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// RefinerSettings returns the refiner settings of the config.
func (c *Config) RefinerSettings() refiner.Settings {
	return refiner.Settings{
		SplitUnit:   c.Refine.SplitUnit,
		Triangulate: c.Refine.Triangulate,
		SwapFaces:   c.Refine.SwapFaces,
	}
}
