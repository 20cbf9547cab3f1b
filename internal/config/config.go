// Package config handles rx3tool configuration loading and management.
package config

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/Faultbox/rx3kit/internal/export/gltfexport"
	"github.com/Faultbox/rx3kit/pkg/rx3model"
)

// Config holds all tool settings.
type Config struct {
	Export  ExportConfig      `yaml:"export"`
	Decode  DecodeConfig      `yaml:"decode"`
	Games   rx3model.Policies `yaml:"games"` // Per-game layout overrides
	Logging LoggingConfig     `yaml:"logging"`
}

// ExportConfig holds batch export settings.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Format    string `yaml:"format"` // glb or gltf
	Recursive bool   `yaml:"recursive"`
	Merge     bool   `yaml:"merge"` // Merge all inputs into one model
	Workers   int    `yaml:"workers"`
}

// DecodeConfig holds container decoding settings.
type DecodeConfig struct {
	Game             string `yaml:"game"`
	SkeletonPath     string `yaml:"skeleton_path"`
	LegacyColorAlpha bool   `yaml:"legacy_color_alpha"`
	NoCrowd          bool   `yaml:"no_crowd"`
	MeshWorkers      int    `yaml:"mesh_workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			OutputDir: ".",
			Format:    gltfexport.FormatGLB,
			Workers:   runtime.NumCPU(),
		},
		Decode: DecodeConfig{
			LegacyColorAlpha: true,
			MeshWorkers:      1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Policies returns the built-in policy table with the configured overrides.
func (c *Config) Policies() rx3model.Policies {
	return rx3model.DefaultPolicies().With(c.Games)
}

// DecodeOptions builds decoder options from the decode section.
func (c *Config) DecodeOptions(log *zap.Logger) rx3model.Options {
	return rx3model.Options{
		Game:             c.Decode.Game,
		Policies:         c.Policies(),
		SkeletonPath:     c.Decode.SkeletonPath,
		LegacyColorAlpha: c.Decode.LegacyColorAlpha,
		NoCrowd:          c.Decode.NoCrowd,
		Workers:          c.Decode.MeshWorkers,
		Logger:           log,
	}
}
