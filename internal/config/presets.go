package config

import "sort"

// Presets are named tweaks applied on top of DefaultConfig.
var Presets = map[string]func(*Config){
	"sand": func(c *Config) {},
	"coarse": func(c *Config) {
		c.Grain.Radius = 5
		c.Grain.Mass = 0.08
		c.Limits.MaxParticles = 5000
	},
	"bouncy": func(c *Config) {
		c.Grain.Restitution = 0.6
		c.Grain.Friction = 0.2
		c.Physics.RestitutionThreshold = 10
	},
	"slick": func(c *Config) {
		c.Grain.Friction = 0.05
		c.Segment.Friction = 0.1
	},
	"moon": func(c *Config) {
		c.Physics.Gravity.Y = 150
		c.Physics.Damping = 0.9995
	},
	"precise": func(c *Config) {
		c.Physics.Substeps = 4
		c.Physics.Iterations = 16
	},
}

// GetPreset returns a fresh DefaultConfig with the named preset applied, or
// nil if the preset does not exist.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
