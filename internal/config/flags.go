package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides registered on a FlagSet.
type Flags struct {
	fs *pflag.FlagSet

	config         *string
	debug          *bool
	splitUnit      *int
	triangulate    *bool
	swapFaces      *bool
	optimize       *bool
	normals        *string
	smoothAngle    *float32
	tangents       *bool
	scale          *float32
	swapHandedness *bool
	workers        *int
	logLevel       *string
	logFile        *string
}

// RegisterFlags adds the config override flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	d := Default()
	return &Flags{
		fs:             fs,
		config:         fs.StringP("config", "c", "", "Path to config file"),
		debug:          fs.Bool("debug", false, "Enable debug logging"),
		splitUnit:      fs.Int("split-unit", d.Refine.SplitUnit, "Vertex budget per split (0 disables splitting)"),
		triangulate:    fs.Bool("triangulate", d.Refine.Triangulate, "Emit triangulated indices"),
		swapFaces:      fs.Bool("swap-faces", d.Refine.SwapFaces, "Invert face winding"),
		optimize:       fs.Bool("optimize", d.Refine.Optimize, "Deduplicate vertices"),
		normals:        fs.String("normals", d.Normals.Mode, "Normal synthesis: keep, flat or smooth"),
		smoothAngle:    fs.Float32("smooth-angle", d.Normals.SmoothAngle, "Smoothing angle in degrees"),
		tangents:       fs.Bool("tangents", d.Normals.Tangents, "Generate tangents"),
		scale:          fs.Float32("scale", d.Import.Scale, "Scale applied to positions on import"),
		swapHandedness: fs.Bool("swap-handedness", d.Import.SwapHandedness, "Mirror X on import"),
		workers:        fs.IntP("workers", "j", d.Batch.Workers, "Parallel meshes (0 = GOMAXPROCS)"),
		logLevel:       fs.String("log-level", d.Logging.Level, "Log level: debug, info, warn or error"),
		logFile:        fs.String("log-file", d.Logging.LogFile, "Rotating log file"),
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func (f *Flags) ConfigPath() string {
	return *f.config
}

// applyFlags copies the flags that were set on the command line into cfg.
func applyFlags(cfg *Config, f *Flags) {
	changed := f.fs.Changed

	if changed("split-unit") {
		cfg.Refine.SplitUnit = *f.splitUnit
	}
	if changed("triangulate") {
		cfg.Refine.Triangulate = *f.triangulate
	}
	if changed("swap-faces") {
		cfg.Refine.SwapFaces = *f.swapFaces
	}
	if changed("optimize") {
		cfg.Refine.Optimize = *f.optimize
	}
	if changed("normals") {
		cfg.Normals.Mode = *f.normals
	}
	if changed("smooth-angle") {
		cfg.Normals.SmoothAngle = *f.smoothAngle
	}
	if changed("tangents") {
		cfg.Normals.Tangents = *f.tangents
	}
	if changed("scale") {
		cfg.Import.Scale = *f.scale
	}
	if changed("swap-handedness") {
		cfg.Import.SwapHandedness = *f.swapHandedness
	}
	if changed("workers") {
		cfg.Batch.Workers = *f.workers
	}
	if changed("log-level") {
		cfg.Logging.Level = *f.logLevel
	}
	if changed("log-file") {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
}
