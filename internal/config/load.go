package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rx3kit/internal/export/gltfexport"
)

// Load loads configuration with priority: defaults < file < flags.
// A nil flags value skips the flag layer.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	configPath := flags.ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the exporter cannot honour.
func (c *Config) Validate() error {
	c.Export.Format = strings.ToLower(c.Export.Format)
	switch c.Export.Format {
	case gltfexport.FormatGLB, gltfexport.FormatGLTF:
	default:
		return fmt.Errorf("unknown export format %q", c.Export.Format)
	}
	if c.Export.Workers < 1 {
		c.Export.Workers = 1
	}
	if c.Decode.MeshWorkers < 1 {
		c.Decode.MeshWorkers = 1
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./rx3kit.yaml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "rx3kit")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "rx3kit")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "rx3kit")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "rx3kit")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
