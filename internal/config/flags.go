package config

import "flag"

// Flags holds the command-line overrides registered on a flag set.
type Flags struct {
	Config    *string
	Debug     *bool
	LogFile   *string
	Output    *string
	Format    *string
	Game      *string
	Skeleton  *string
	Recursive *bool
	Merge     *bool
	Workers   *int
	TrueAlpha *bool
	NoCrowd   *bool
}

// RegisterFlags adds the shared flags to fs. Call it before fs.Parse.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:    fs.String("config", "", "Path to config file"),
		Debug:     fs.Bool("debug", false, "Enable debug logging"),
		LogFile:   fs.String("log", "", "Also write logs to this file"),
		Output:    fs.String("o", "", "Output directory"),
		Format:    fs.String("format", "", "Output format: glb or gltf"),
		Game:      fs.String("game", "", "Game id selecting the binary layout, e.g. fifa16pc"),
		Skeleton:  fs.String("skeleton", "", "External skeleton container"),
		Recursive: fs.Bool("r", false, "Walk input directories recursively"),
		Merge:     fs.Bool("merge", false, "Merge all inputs into one model"),
		Workers:   fs.Int("j", 0, "Number of files exported in parallel"),
		TrueAlpha: fs.Bool("true-alpha", false, "Read vertex color alpha from the alpha lane"),
		NoCrowd:   fs.Bool("no-crowd", false, "Skip stadium crowd placement files"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.Config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if *f.LogFile != "" {
		cfg.Logging.LogFile = *f.LogFile
	}
	if *f.Output != "" {
		cfg.Export.OutputDir = *f.Output
	}
	if *f.Format != "" {
		cfg.Export.Format = *f.Format
	}
	if *f.Game != "" {
		cfg.Decode.Game = *f.Game
	}
	if *f.Skeleton != "" {
		cfg.Decode.SkeletonPath = *f.Skeleton
	}
	if *f.Recursive {
		cfg.Export.Recursive = true
	}
	if *f.Merge {
		cfg.Export.Merge = true
	}
	if *f.Workers > 0 {
		cfg.Export.Workers = *f.Workers
	}
	if *f.TrueAlpha {
		cfg.Decode.LegacyColorAlpha = false
	}
	if *f.NoCrowd {
		cfg.Decode.NoCrowd = true
	}
}
