// Package experiment assembles controllers from configuration by name and
// runs them headless.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/events"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/sim"
)

type Config struct {
	Sim          *config.Config
	Scene        string
	Duration     float64
	EmitPerFrame int
	EmitFrames   int
	// EmitAt defaults to the configured emitter height at mid-screen.
	EmitAt      *geom.Vec2
	SampleEvery int
}

type Experiment struct {
	cfg        Config
	controller *sim.Controller
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the controller, lays out the scene and attaches metrics.
func (e *Experiment) Setup(r *Registry, metrics []sim.Metric, obs ...events.Observer) error {
	if e.cfg.Sim == nil {
		return sim.ErrNotConfigured
	}
	opts, err := r.Options(e.cfg.Sim)
	if err != nil {
		return err
	}
	for _, o := range obs {
		opts = append(opts, sim.WithEvents(o))
	}

	c, err := sim.New(e.cfg.Sim, opts...)
	if err != nil {
		return err
	}

	name := e.cfg.Scene
	if name == "" {
		name = "empty"
	}
	scene, err := r.GetScene(name)
	if err != nil {
		return err
	}
	if err := scene(c); err != nil {
		return fmt.Errorf("scene %s: %w", name, err)
	}

	for _, m := range metrics {
		c.AddMetric(m)
	}
	e.controller = c
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.controller == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	cfg := e.cfg.Sim
	at := geom.V(cfg.Screen.Width/2, cfg.Emitter.Y)
	if e.cfg.EmitAt != nil {
		at = *e.cfg.EmitAt
	}
	return e.controller.Run(ctx, sim.RunConfig{
		Duration:     e.cfg.Duration,
		Dt:           cfg.Dt(),
		EmitAt:       at,
		EmitPerFrame: e.cfg.EmitPerFrame,
		EmitFrames:   e.cfg.EmitFrames,
		SampleEvery:  e.cfg.SampleEvery,
		CheckFinite:  true,
	})
}

// Controller returns the underlying controller for adding observers.
func (e *Experiment) Controller() *sim.Controller {
	return e.controller
}
