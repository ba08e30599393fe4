package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/granular/internal/collision"
	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/integrators"
	"github.com/san-kum/granular/internal/metrics"
	"github.com/san-kum/granular/internal/sim"
)

// Scene lays out user segments on a freshly built controller.
type Scene func(c *sim.Controller) error

type Registry struct {
	integrators map[string]func(*config.Config) integrators.Integrator
	broadPhases map[string]func(*config.Config) collision.BroadPhase
	scenes      map[string]Scene
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func(*config.Config) integrators.Integrator),
		broadPhases: make(map[string]func(*config.Config) collision.BroadPhase),
		scenes:      make(map[string]Scene),
	}

	r.integrators["semi_implicit"] = func(cfg *config.Config) integrators.Integrator {
		return integrators.NewSemiImplicitEuler(sim.IntegratorParams(cfg))
	}
	r.integrators["euler"] = func(cfg *config.Config) integrators.Integrator {
		return integrators.NewExplicitEuler(sim.IntegratorParams(cfg))
	}
	r.integrators["verlet"] = func(cfg *config.Config) integrators.Integrator {
		return integrators.NewVerlet(sim.IntegratorParams(cfg))
	}

	r.broadPhases["grid"] = func(cfg *config.Config) collision.BroadPhase {
		return collision.NewGrid(sim.CullWindow(cfg), cfg.Grain.Radius, cfg.Physics.Workers)
	}
	r.broadPhases["naive"] = func(cfg *config.Config) collision.BroadPhase {
		return collision.NewNaive()
	}

	r.scenes["empty"] = func(c *sim.Controller) error { return nil }
	r.scenes["ramp"] = rampScene
	r.scenes["funnel"] = funnelScene
	r.scenes["steps"] = stepsScene

	return r
}

func (r *Registry) GetIntegrator(name string, cfg *config.Config) (integrators.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) GetBroadPhase(name string, cfg *config.Config) (collision.BroadPhase, error) {
	fn, ok := r.broadPhases[name]
	if !ok {
		return nil, fmt.Errorf("unknown broad phase: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) GetScene(name string) (Scene, error) {
	fn, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return fn, nil
}

// Options resolves the integrator and broad phase named in cfg.
func (r *Registry) Options(cfg *config.Config) ([]sim.Option, error) {
	integ, err := r.GetIntegrator(cfg.Physics.Integrator, cfg)
	if err != nil {
		return nil, err
	}
	bp, err := r.GetBroadPhase(cfg.Physics.BroadPhase, cfg)
	if err != nil {
		return nil, err
	}
	return []sim.Option{sim.WithIntegrator(integ), sim.WithBroadPhase(bp)}, nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListBroadPhases() []string { return sortedKeys(r.broadPhases) }
func (r *Registry) ListScenes() []string      { return sortedKeys(r.scenes) }

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Default()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func segments(c *sim.Controller, pts [][2]geom.Vec2) error {
	t := c.Config().Segment.Thickness
	for _, p := range pts {
		if _, err := c.CreateSegment(p[0], p[1], t); err != nil {
			return err
		}
	}
	return nil
}

func rampScene(c *sim.Controller) error {
	w, h := c.Config().Screen.Width, c.Config().Screen.Height
	return segments(c, [][2]geom.Vec2{
		{geom.V(w/3, h/3), geom.V(w*2/3, h/3+80)},
	})
}

// funnelScene leaves a gap of four grain diameters at the spout.
func funnelScene(c *sim.Controller) error {
	cfg := c.Config()
	w, h := cfg.Screen.Width, cfg.Screen.Height
	gap := 4 * cfg.Grain.Radius
	return segments(c, [][2]geom.Vec2{
		{geom.V(w*0.2, h*0.2), geom.V(w/2-gap, h*0.45)},
		{geom.V(w*0.8, h*0.2), geom.V(w/2+gap, h*0.45)},
	})
}

func stepsScene(c *sim.Controller) error {
	w, h := c.Config().Screen.Width, c.Config().Screen.Height
	var pts [][2]geom.Vec2
	for i := 0; i < 4; i++ {
		x := w*0.3 + float64(i)*w*0.12
		y := h*0.25 + float64(i)*h*0.15
		pts = append(pts, [2]geom.Vec2{geom.V(x, y), geom.V(x+w*0.1, y+10)})
	}
	return segments(c, pts)
}
