package config

// Overrides carries command-line settings that take priority over both
// the defaults and the config file. Zero values leave the config alone.
type Overrides struct {
	Debug        bool
	DatasetPath  string
	Radius       float64
	Subdivisions int
	Sync         string
	SphereRadius float64
}

func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.DatasetPath != "" {
		cfg.Data.DatasetPath = o.DatasetPath
	}
	if o.Radius > 0 {
		cfg.Tube.Radius = float32(o.Radius)
	}
	if o.Subdivisions > 0 {
		cfg.Tube.Subdivisions = o.Subdivisions
	}
	if o.Sync != "" {
		cfg.Sync.Mode = o.Sync
	}
	if o.SphereRadius > 0 {
		cfg.Sphere.Radius = float32(o.SphereRadius)
	}
}
