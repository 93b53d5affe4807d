package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test tube defaults
	if cfg.Tube.Radius != 0.2 {
		t.Errorf("expected tube radius 0.2, got %f", cfg.Tube.Radius)
	}
	if cfg.Tube.Subdivisions != 8 {
		t.Errorf("expected 8 subdivisions, got %d", cfg.Tube.Subdivisions)
	}
	if cfg.Tube.LineMesh {
		t.Error("expected line_mesh to be false by default")
	}

	// Test rolls defaults
	if cfg.Rolls.Radius != 0.45 {
		t.Errorf("expected rolls radius 0.45, got %f", cfg.Rolls.Radius)
	}
	if cfg.Rolls.Width != 3.0 {
		t.Errorf("expected rolls width 3.0, got %f", cfg.Rolls.Width)
	}

	// Test sync defaults
	if cfg.Sync.Mode != "timestep" {
		t.Errorf("expected sync mode 'timestep', got %s", cfg.Sync.Mode)
	}
	if cfg.Sync.Alignment != "local" {
		t.Errorf("expected alignment 'local', got %s", cfg.Sync.Alignment)
	}
	if cfg.Sync.ReferenceTrajectory != 0 {
		t.Errorf("expected reference trajectory 0, got %d", cfg.Sync.ReferenceTrajectory)
	}

	// Test sphere defaults
	if cfg.Sphere.Radius != 1.5 {
		t.Errorf("expected sphere radius 1.5, got %f", cfg.Sphere.Radius)
	}
	if cfg.Sphere.LatSubdivisions != 128 || cfg.Sphere.LonSubdivisions != 128 {
		t.Errorf("expected 128x128 sphere subdivisions, got %dx%d",
			cfg.Sphere.LatSubdivisions, cfg.Sphere.LonSubdivisions)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trajvis.yaml")

	yamlContent := `
tube:
  radius: 0.35
  subdivisions: 16
  line_mesh: true

rolls:
  radius: 0.6
  width: 4.5
  map_thickness: true

sync:
  mode: "height"
  alignment: "global"
  reference_trajectory: 3

sphere:
  radius: 2.0
  lat_subdivisions: 64
  lon_subdivisions: 64

data:
  dataset_path: "warm_conveyor.json"

logging:
  level: "debug"
  log_file: "trajvis.log"
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
	if cfg.Tube.Radius != 0.35 {
		t.Errorf("expected tube radius 0.35, got %f", cfg.Tube.Radius)
	}
	if cfg.Tube.Subdivisions != 16 {
		t.Errorf("expected 16 subdivisions, got %d", cfg.Tube.Subdivisions)
	}
	if !cfg.Tube.LineMesh {
		t.Error("expected line_mesh to be true")
	}

	if cfg.Rolls.Radius != 0.6 {
		t.Errorf("expected rolls radius 0.6, got %f", cfg.Rolls.Radius)
	}
	if !cfg.Rolls.MapThickness {
		t.Error("expected map_thickness to be true")
	}

	if cfg.Sync.Mode != "height" {
		t.Errorf("expected sync mode 'height', got %s", cfg.Sync.Mode)
	}
	if cfg.Sync.Alignment != "global" {
		t.Errorf("expected alignment 'global', got %s", cfg.Sync.Alignment)
	}
	if cfg.Sync.ReferenceTrajectory != 3 {
		t.Errorf("expected reference trajectory 3, got %d", cfg.Sync.ReferenceTrajectory)
	}

	if cfg.Sphere.Radius != 2.0 {
		t.Errorf("expected sphere radius 2.0, got %f", cfg.Sphere.Radius)
	}

	if cfg.Data.DatasetPath != "warm_conveyor.json" {
		t.Errorf("expected dataset path warm_conveyor.json, got %s", cfg.Data.DatasetPath)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "trajvis.log" {
		t.Errorf("expected log file 'trajvis.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
tube:
  radius: not a number
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
	err := loadFromFile(cfg, "/nonexistent/path/trajvis.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
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
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create trajvis.yaml in current directory
	configPath := filepath.Join(tmpDir, "trajvis.yaml")
	if err := os.WriteFile(configPath, []byte("tube:\n  radius: 0.1\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find trajvis.yaml in current directory")
	}
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides Overrides
		verify    func(*Config)
	}{
		{
			name:      "debug",
			overrides: Overrides{Debug: true},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name:      "dataset",
			overrides: Overrides{DatasetPath: "other.json"},
			verify: func(cfg *Config) {
				if cfg.Data.DatasetPath != "other.json" {
					t.Errorf("expected dataset other.json, got %s", cfg.Data.DatasetPath)
				}
			},
		},
		{
			name:      "radius and subdivisions",
			overrides: Overrides{Radius: 0.5, Subdivisions: 32},
			verify: func(cfg *Config) {
				if cfg.Tube.Radius != 0.5 {
					t.Errorf("expected tube radius 0.5, got %f", cfg.Tube.Radius)
				}
				if cfg.Tube.Subdivisions != 32 {
					t.Errorf("expected 32 subdivisions, got %d", cfg.Tube.Subdivisions)
				}
			},
		},
		{
			name:      "sync",
			overrides: Overrides{Sync: "ascent"},
			verify: func(cfg *Config) {
				if cfg.Sync.Mode != "ascent" {
					t.Errorf("expected sync mode 'ascent', got %s", cfg.Sync.Mode)
				}
			},
		},
		{
			name:      "sphere radius",
			overrides: Overrides{SphereRadius: 2.5},
			verify: func(cfg *Config) {
				if cfg.Sphere.Radius != 2.5 {
					t.Errorf("expected sphere radius 2.5, got %f", cfg.Sphere.Radius)
				}
			},
		},
		{
			name:      "zero values leave the defaults",
			overrides: Overrides{},
			verify: func(cfg *Config) {
				def := Default()
				if *cfg != *def {
					t.Errorf("expected untouched defaults, got %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.overrides.apply(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trajvis.yaml")

	yamlContent := `
tube:
  radius: 0.3
  subdivisions: 12
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath, Overrides{Radius: 0.9})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Radius should be from the override (0.9), not the file (0.3)
	if cfg.Tube.Radius != 0.9 {
		t.Errorf("expected tube radius 0.9 from override, got %f", cfg.Tube.Radius)
	}

	// Subdivisions should be from the file (12) since there is no override
	if cfg.Tube.Subdivisions != 12 {
		t.Errorf("expected 12 subdivisions from file, got %d", cfg.Tube.Subdivisions)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path/trajvis.yaml", Overrides{}); err == nil {
		t.Error("expected error for an explicit missing config path, got nil")
	}
}
