package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test refine defaults
	if cfg.Refine.SplitUnit != 65000 {
		t.Errorf("expected split unit 65000, got %d", cfg.Refine.SplitUnit)
	}
	if !cfg.Refine.Triangulate {
		t.Error("expected triangulate to be true by default")
	}
	if cfg.Refine.SwapFaces {
		t.Error("expected swap_faces to be false by default")
	}
	if !cfg.Refine.Optimize {
		t.Error("expected optimize to be true by default")
	}

	// Test normals defaults
	if cfg.Normals.Mode != NormalsKeep {
		t.Errorf("expected normals mode 'keep', got %s", cfg.Normals.Mode)
	}
	if cfg.Normals.SmoothAngle != 60 {
		t.Errorf("expected smooth angle 60, got %f", cfg.Normals.SmoothAngle)
	}

	// Test import defaults
	if cfg.Import.Scale != 1 {
		t.Errorf("expected scale 1, got %f", cfg.Import.Scale)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
refine:
  split_unit: 30000
  triangulate: false
  swap_faces: true
  optimize: false

normals:
  mode: smooth
  smooth_angle: 45
  tangents: true

import:
  scale: 0.01
  swap_handedness: true

batch:
  workers: 4

logging:
  level: "debug"
  log_file: "refine.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Refine.SplitUnit != 30000 {
		t.Errorf("expected split unit 30000, got %d", cfg.Refine.SplitUnit)
	}
	if cfg.Refine.Triangulate {
		t.Error("expected triangulate to be false")
	}
	if !cfg.Refine.SwapFaces {
		t.Error("expected swap_faces to be true")
	}
	if cfg.Refine.Optimize {
		t.Error("expected optimize to be false")
	}

	if cfg.Normals.Mode != NormalsSmooth {
		t.Errorf("expected normals mode 'smooth', got %s", cfg.Normals.Mode)
	}
	if cfg.Normals.SmoothAngle != 45 {
		t.Errorf("expected smooth angle 45, got %f", cfg.Normals.SmoothAngle)
	}
	if !cfg.Normals.Tangents {
		t.Error("expected tangents to be true")
	}

	if cfg.Import.Scale != 0.01 {
		t.Errorf("expected scale 0.01, got %f", cfg.Import.Scale)
	}
	if !cfg.Import.SwapHandedness {
		t.Error("expected swap_handedness to be true")
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Batch.Workers)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "refine.log" {
		t.Errorf("expected log file 'refine.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("refine:\n  split_unit: 100\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Refine.SplitUnit != 100 {
		t.Errorf("expected split unit 100, got %d", cfg.Refine.SplitUnit)
	}
	// Untouched keys keep their defaults
	if !cfg.Refine.Triangulate {
		t.Error("expected triangulate default to survive a partial file")
	}
	if cfg.Normals.SmoothAngle != 60 {
		t.Errorf("expected smooth angle 60, got %f", cfg.Normals.SmoothAngle)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
refine:
  split_unit: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative split unit", func(c *Config) { c.Refine.SplitUnit = -1 }},
		{"split unit below a triangle", func(c *Config) { c.Refine.SplitUnit = 2 }},
		{"unknown normals mode", func(c *Config) { c.Normals.Mode = "auto" }},
		{"smooth angle out of range", func(c *Config) { c.Normals.SmoothAngle = 200 }},
		{"zero scale", func(c *Config) { c.Import.Scale = 0 }},
		{"negative workers", func(c *Config) { c.Batch.Workers = -2 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRefinerSettings(t *testing.T) {
	cfg := Default()
	cfg.Refine.SplitUnit = 1000
	cfg.Refine.SwapFaces = true

	s := cfg.RefinerSettings()
	if s.SplitUnit != 1000 || !s.Triangulate || !s.SwapFaces {
		t.Errorf("unexpected settings %+v", s)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create meshrefine.yaml in current directory
	if err := os.WriteFile("meshrefine.yaml", []byte("refine:\n  split_unit: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find meshrefine.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"--debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "refine flags",
			args: []string{"--split-unit", "1024", "--triangulate=false", "--swap-faces"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Refine.SplitUnit != 1024 {
					t.Errorf("expected split unit 1024, got %d", cfg.Refine.SplitUnit)
				}
				if cfg.Refine.Triangulate {
					t.Error("expected triangulate to be false")
				}
				if !cfg.Refine.SwapFaces {
					t.Error("expected swap_faces to be true")
				}
			},
		},
		{
			name: "normals flags",
			args: []string{"--normals", "smooth", "--smooth-angle", "30", "--tangents"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Normals.Mode != NormalsSmooth {
					t.Errorf("expected normals mode 'smooth', got %s", cfg.Normals.Mode)
				}
				if cfg.Normals.SmoothAngle != 30 {
					t.Errorf("expected smooth angle 30, got %f", cfg.Normals.SmoothAngle)
				}
				if !cfg.Normals.Tangents {
					t.Error("expected tangents to be true")
				}
			},
		},
		{
			name: "import and batch flags",
			args: []string{"--scale", "2.5", "--swap-handedness", "-j", "3"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Import.Scale != 2.5 {
					t.Errorf("expected scale 2.5, got %f", cfg.Import.Scale)
				}
				if !cfg.Import.SwapHandedness {
					t.Error("expected swap_handedness to be true")
				}
				if cfg.Batch.Workers != 3 {
					t.Errorf("expected 3 workers, got %d", cfg.Batch.Workers)
				}
			},
		},
		{
			name: "unset flags keep config values",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Refine.SplitUnit != 123 {
					t.Errorf("expected split unit 123 to survive, got %d", cfg.Refine.SplitUnit)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			f := RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("failed to parse flags: %v", err)
			}

			cfg := Default()
			cfg.Refine.SplitUnit = 123
			applyFlags(cfg, f)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
refine:
  split_unit: 1600
normals:
  smooth_angle: 20
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Flag overrides the config file
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"--config", configPath, "--split-unit", "1920"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	// Load config
	cfg, err := Load("", f)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Split unit should be from flag (1920), not file (1600)
	if cfg.Refine.SplitUnit != 1920 {
		t.Errorf("expected split unit 1920 from flag, got %d", cfg.Refine.SplitUnit)
	}

	// Smooth angle should be from file (20) since no flag override
	if cfg.Normals.SmoothAngle != 20 {
		t.Errorf("expected smooth angle 20 from file, got %f", cfg.Normals.SmoothAngle)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("normals:\n  mode: wobbly\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := Load(configPath, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Refine.SplitUnit = 4096
	cfg.Normals.Mode = NormalsFlat
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Refine.SplitUnit != 4096 {
		t.Errorf("expected split unit 4096, got %d", loaded.Refine.SplitUnit)
	}
	if loaded.Normals.Mode != NormalsFlat {
		t.Errorf("expected normals mode 'flat', got %s", loaded.Normals.Mode)
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
