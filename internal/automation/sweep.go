package automation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/experiment"
)

// Tunable reads and writes one numeric config field.
type Tunable struct {
	Get func(*config.Config) float64
	Set func(*config.Config, float64)
}

// Tunables maps sweepable parameter names to their config fields.
var Tunables = map[string]Tunable{
	"friction": {
		func(c *config.Config) float64 { return c.Grain.Friction },
		func(c *config.Config, v float64) { c.Grain.Friction = v },
	},
	"restitution": {
		func(c *config.Config) float64 { return c.Grain.Restitution },
		func(c *config.Config, v float64) { c.Grain.Restitution = v },
	},
	"segment_friction": {
		func(c *config.Config) float64 { return c.Segment.Friction },
		func(c *config.Config, v float64) { c.Segment.Friction = v },
	},
	"damping": {
		func(c *config.Config) float64 { return c.Physics.Damping },
		func(c *config.Config, v float64) { c.Physics.Damping = v },
	},
	"gravity": {
		func(c *config.Config) float64 { return c.Physics.Gravity.Y },
		func(c *config.Config, v float64) { c.Physics.Gravity.Y = v },
	},
	"radius": {
		func(c *config.Config) float64 { return c.Grain.Radius },
		func(c *config.Config, v float64) { c.Grain.Radius = v },
	},
	"substeps": {
		func(c *config.Config) float64 { return float64(c.Physics.Substeps) },
		func(c *config.Config, v float64) { c.Physics.Substeps = int(math.Round(v)) },
	},
	"max_particles": {
		func(c *config.Config) float64 { return float64(c.Limits.MaxParticles) },
		func(c *config.Config, v float64) { c.Limits.MaxParticles = int(math.Round(v)) },
	},
}

func ListTunables() []string {
	names := make([]string, 0, len(Tunables))
	for name := range Tunables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterSweep runs the same poured-heap experiment across a range of
// values for one parameter.
type ParameterSweep struct {
	Base         *config.Config
	Scene        string
	ParamName    string
	ParamMin     float64
	ParamMax     float64
	NumSteps     int
	Duration     float64
	EmitPerFrame int
	EmitFrames   int
}

// SweepResult holds the final metric values for one parameter value.
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Grains     int
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	tunable, ok := Tunables[sweep.ParamName]
	if !ok {
		return nil, fmt.Errorf("parameter %s is not tunable", sweep.ParamName)
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	step := 0.0
	if sweep.NumSteps > 1 {
		step = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		val := sweep.ParamMin + float64(i)*step
		cfg := *sweep.Base
		tunable.Set(&cfg, val)

		exp := experiment.New(experiment.Config{
			Sim:          &cfg,
			Scene:        sweep.Scene,
			Duration:     sweep.Duration,
			EmitPerFrame: sweep.EmitPerFrame,
			EmitFrames:   sweep.EmitFrames,
			SampleEvery:  1 << 30,
		})
		if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, val, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, val, err)
		}

		results = append(results, SweepResult{
			ParamValue: val,
			Metrics:    result.Metrics,
			Grains:     exp.Controller().Len(),
		})
	}

	return results, nil
}

// Best returns the sweep entry with the lowest value of metric.
func Best(results []SweepResult, metric string) (SweepResult, bool) {
	var best SweepResult
	found := false
	for _, r := range results {
		v, ok := r.Metrics[metric]
		if !ok {
			continue
		}
		if !found || v < best.Metrics[metric] {
			best, found = r, true
		}
	}
	return best, found
}
