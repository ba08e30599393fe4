package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Screen.Width != 900 || cfg.Screen.Height != 900 {
		t.Errorf("expected 900x900 screen, got %gx%g", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Physics.Gravity.Y != 900 {
		t.Errorf("expected gravity 900, got %g", cfg.Physics.Gravity.Y)
	}
	if cfg.Limits.MaxParticles != 20000 {
		t.Errorf("expected 20000 max particles, got %d", cfg.Limits.MaxParticles)
	}
	if cfg.Physics.Substeps != 2 {
		t.Errorf("expected 2 substeps, got %d", cfg.Physics.Substeps)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if math.Abs(cfg.Dt()-1.0/60) > 1e-12 {
		t.Errorf("dt = %g", cfg.Dt())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative radius", func(c *Config) { c.Grain.Radius = -1 }},
		{"zero mass", func(c *Config) { c.Grain.Mass = 0 }},
		{"damping above one", func(c *Config) { c.Physics.Damping = 1.5 }},
		{"damping of one", func(c *Config) { c.Physics.Damping = 1 }},
		{"zero damping", func(c *Config) { c.Physics.Damping = 0 }},
		{"NaN damping", func(c *Config) { c.Physics.Damping = math.NaN() }},
		{"no substeps", func(c *Config) { c.Physics.Substeps = 0 }},
		{"negative thickness", func(c *Config) { c.Segment.Thickness = -2 }},
		{"restitution above one", func(c *Config) { c.Grain.Restitution = 1.2 }},
		{"infinite gravity", func(c *Config) { c.Physics.Gravity.Y = math.Inf(1) }},
		{"zero capacity", func(c *Config) { c.Limits.MaxParticles = 0 }},
		{"negative margin", func(c *Config) { c.Limits.CullMargin.Bottom = -1 }},
		{"zero fps", func(c *Config) { c.Screen.FPS = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig: %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "granular.yaml")

	cfg := DefaultConfig()
	cfg.Grain.Radius = 3
	cfg.Physics.Gravity.Y = 450
	cfg.Seed = 7

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Grain.Radius != 3 || loaded.Physics.Gravity.Y != 450 || loaded.Seed != 7 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("grain:\n  radius: 4\nphysics:\n  gravity:\n    x: 0\n    y: 100\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Grain.Radius != 4 {
		t.Errorf("expected radius 4, got %g", cfg.Grain.Radius)
	}
	if cfg.Physics.Gravity.Y != 100 {
		t.Errorf("expected gravity 100, got %g", cfg.Physics.Gravity.Y)
	}
	if cfg.Grain.Mass != DefaultMass {
		t.Errorf("unset field should keep default, got mass %g", cfg.Grain.Mass)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("coarse")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Grain.Radius != 5 {
		t.Errorf("expected radius 5, got %g", cfg.Grain.Radius)
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}

	// Presets must not leak into the shared defaults.
	if DefaultConfig().Grain.Radius != DefaultRadius {
		t.Error("preset mutated DefaultConfig")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
	for _, n := range names {
		if err := GetPreset(n).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", n, err)
		}
	}
}
