// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Tube    TubeConfig    `yaml:"tube"`
	Rolls   RollsConfig   `yaml:"rolls"`
	Sync    SyncConfig    `yaml:"sync"`
	Sphere  SphereConfig  `yaml:"sphere"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// TubeConfig holds tube extrusion settings.
type TubeConfig struct {
	Radius       float32 `yaml:"radius"`
	Subdivisions int     `yaml:"subdivisions"`
	LineMesh     bool    `yaml:"line_mesh"` // emit centerlines for GPU-side extrusion
}

// RollsConfig holds roll geometry settings.
type RollsConfig struct {
	Radius       float32 `yaml:"radius"`
	Width        float32 `yaml:"width"` // arc length of one roll
	MapThickness bool    `yaml:"map_thickness"`
}

// SyncConfig holds time synchronization settings.
type SyncConfig struct {
	Mode                string `yaml:"mode"`      // timestep, ascent, height
	Alignment           string `yaml:"alignment"` // local, global (ascent mode)
	ReferenceTrajectory int    `yaml:"reference_trajectory"`
}

// SphereConfig holds cross-section sphere settings.
type SphereConfig struct {
	Radius          float32 `yaml:"radius"`
	LatSubdivisions int     `yaml:"lat_subdivisions"`
	LonSubdivisions int     `yaml:"lon_subdivisions"`
}

// DataConfig holds dataset paths.
type DataConfig struct {
	DatasetPath string `yaml:"dataset_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Tube: TubeConfig{
			Radius:       0.2,
			Subdivisions: 8,
			LineMesh:     false,
		},
		Rolls: RollsConfig{
			Radius:       0.45,
			Width:        3.0,
			MapThickness: false,
		},
		Sync: SyncConfig{
			Mode:                "timestep",
			Alignment:           "local",
			ReferenceTrajectory: 0,
		},
		Sphere: SphereConfig{
			Radius:          1.5,
			LatSubdivisions: 128,
			LonSubdivisions: 128,
		},
		Data: DataConfig{
			DatasetPath: "trajectories.json",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
