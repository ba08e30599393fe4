package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/granular/internal/geom"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth        = 900
	DefaultHeight       = 900
	DefaultUIHeight     = 40
	DefaultFPS          = 60
	DefaultGravityY     = 900.0
	DefaultRadius       = 2.5
	DefaultMass         = 0.02
	DefaultFriction     = 0.45
	DefaultRestitution  = 0.05
	DefaultDamping      = 0.999
	DefaultMaxParticles = 20000
	DefaultSubsteps     = 2
	DefaultIterations   = 8
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Screen  ScreenConfig  `yaml:"screen"`
	Physics PhysicsConfig `yaml:"physics"`
	Grain   GrainConfig   `yaml:"grain"`
	Segment SegmentConfig `yaml:"segment"`
	Limits  LimitsConfig  `yaml:"limits"`
	Emitter EmitterConfig `yaml:"emitter"`
	Seed    int64         `yaml:"seed"`
}

type ScreenConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	UIHeight int     `yaml:"ui_height"`
	FPS      int     `yaml:"fps"`
}

type PhysicsConfig struct {
	Gravity              geom.Vec2 `yaml:"gravity"`
	Damping              float64   `yaml:"damping"`
	Substeps             int       `yaml:"substeps"`
	Iterations           int       `yaml:"iterations"`
	Correction           float64   `yaml:"correction"`
	Slop                 float64   `yaml:"slop"`
	RestitutionThreshold float64   `yaml:"restitution_threshold"`
	Integrator           string    `yaml:"integrator"`
	BroadPhase           string    `yaml:"broadphase"`
	Workers              int       `yaml:"workers"`
}

type GrainConfig struct {
	Radius      float64 `yaml:"radius"`
	Mass        float64 `yaml:"mass"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

type SegmentConfig struct {
	Friction          float64 `yaml:"friction"`
	Restitution       float64 `yaml:"restitution"`
	Thickness         float64 `yaml:"thickness"`
	BoundaryThickness float64 `yaml:"boundary_thickness"`
}

type LimitsConfig struct {
	MaxParticles int          `yaml:"max_particles"`
	CullMargin   MarginConfig `yaml:"cull_margin"`
}

type MarginConfig struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

type EmitterConfig struct {
	Spread float64 `yaml:"spread"`
	Y      float64 `yaml:"y"`
	Step   float64 `yaml:"step"`
	Edge   float64 `yaml:"edge"`
	Batch  int     `yaml:"batch"`
}

func DefaultConfig() *Config {
	return &Config{
		Screen: ScreenConfig{
			Width:    DefaultWidth,
			Height:   DefaultHeight,
			UIHeight: DefaultUIHeight,
			FPS:      DefaultFPS,
		},
		Physics: PhysicsConfig{
			Gravity:              geom.V(0, DefaultGravityY),
			Damping:              DefaultDamping,
			Substeps:             DefaultSubsteps,
			Iterations:           DefaultIterations,
			Correction:           1.0,
			Slop:                 0,
			RestitutionThreshold: 30,
			Integrator:           "semi_implicit",
			BroadPhase:           "grid",
		},
		Grain: GrainConfig{
			Radius:      DefaultRadius,
			Mass:        DefaultMass,
			Friction:    DefaultFriction,
			Restitution: DefaultRestitution,
		},
		Segment: SegmentConfig{
			Friction:          0.7,
			Restitution:       0.0,
			Thickness:         2,
			BoundaryThickness: 1,
		},
		Limits: LimitsConfig{
			MaxParticles: DefaultMaxParticles,
			CullMargin:   MarginConfig{Left: 50, Right: 50, Top: 50, Bottom: 200},
		},
		Emitter: EmitterConfig{
			Spread: 6,
			Y:      5,
			Step:   5,
			Edge:   10,
			Batch:  100,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Dt is the frame timestep implied by the target frame rate.
func (c Config) Dt() float64 {
	return 1.0 / float64(c.Screen.FPS)
}

// Validate rejects values that would corrupt the collision math. It is meant
// to run once before a simulation is built; every failure wraps
// ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConfig}, args...)...))
		}
	}

	check(positive(c.Screen.Width) && positive(c.Screen.Height), "screen must be positive, got %gx%g", c.Screen.Width, c.Screen.Height)
	check(c.Screen.FPS > 0, "fps must be positive, got %d", c.Screen.FPS)
	check(c.Physics.Gravity.IsFinite(), "gravity must be finite")
	check(c.Physics.Damping > 0 && c.Physics.Damping < 1, "damping must be in (0,1), got %g", c.Physics.Damping)
	check(c.Physics.Substeps > 0, "substeps must be positive, got %d", c.Physics.Substeps)
	check(c.Physics.Iterations > 0, "iterations must be positive, got %d", c.Physics.Iterations)
	check(c.Physics.Correction >= 0 && c.Physics.Correction <= 1, "correction must be in [0,1], got %g", c.Physics.Correction)
	check(nonNegative(c.Physics.Slop), "slop must be non-negative, got %g", c.Physics.Slop)
	check(nonNegative(c.Physics.RestitutionThreshold), "restitution threshold must be non-negative")
	check(c.Physics.Workers >= 0, "workers must be non-negative, got %d", c.Physics.Workers)
	check(positive(c.Grain.Radius), "grain radius must be positive, got %g", c.Grain.Radius)
	check(positive(c.Grain.Mass), "grain mass must be positive, got %g", c.Grain.Mass)
	check(nonNegative(c.Grain.Friction), "grain friction must be non-negative, got %g", c.Grain.Friction)
	check(unit(c.Grain.Restitution), "grain restitution must be in [0,1], got %g", c.Grain.Restitution)
	check(nonNegative(c.Segment.Friction), "segment friction must be non-negative, got %g", c.Segment.Friction)
	check(unit(c.Segment.Restitution), "segment restitution must be in [0,1], got %g", c.Segment.Restitution)
	check(nonNegative(c.Segment.Thickness), "segment thickness must be non-negative, got %g", c.Segment.Thickness)
	check(nonNegative(c.Segment.BoundaryThickness), "boundary thickness must be non-negative, got %g", c.Segment.BoundaryThickness)
	check(c.Limits.MaxParticles > 0, "max particles must be positive, got %d", c.Limits.MaxParticles)
	m := c.Limits.CullMargin
	check(nonNegative(m.Left) && nonNegative(m.Right) && nonNegative(m.Top) && nonNegative(m.Bottom), "cull margins must be non-negative")
	check(nonNegative(c.Emitter.Spread), "emitter spread must be non-negative, got %g", c.Emitter.Spread)
	check(c.Emitter.Batch >= 0, "emitter batch must be non-negative, got %d", c.Emitter.Batch)

	return errors.Join(errs...)
}

func positive(v float64) bool    { return v > 0 && !math.IsInf(v, 0) }
func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 0) }
func unit(v float64) bool        { return v >= 0 && v <= 1 }
