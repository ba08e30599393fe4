package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/experiment"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sandbox session
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Scene       string         `yaml:"scene"`
	Seed        *int64         `yaml:"seed"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. Exactly one action is set.
type ScenarioStep struct {
	Emit    *EmitStep    `yaml:"emit"`
	Segment *SegmentStep `yaml:"segment"`
	Run     *RunStep     `yaml:"run"`
	Reset   bool         `yaml:"reset"`
}

type EmitStep struct {
	At    geom.Vec2 `yaml:"at"`
	Count int       `yaml:"count"`
}

type SegmentStep struct {
	From      geom.Vec2 `yaml:"from"`
	To        geom.Vec2 `yaml:"to"`
	Thickness *float64  `yaml:"thickness"`
}

type RunStep struct {
	Duration     float64    `yaml:"duration"`
	EmitAt       *geom.Vec2 `yaml:"emit_at"`
	EmitPerFrame int        `yaml:"emit_per_frame"`
	EmitFrames   int        `yaml:"emit_frames"`
	SampleEvery  int        `yaml:"sample_every"`
	SaveAs       string     `yaml:"save_as"`
}

// StepResult records what one step did. Result is set for run steps only.
type StepResult struct {
	Index   int
	Kind    string
	Created int
	Grains  int
	SaveAs  string
	Result  *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	for i, step := range scenario.Steps {
		if _, err := step.kind(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &scenario, nil
}

func (s ScenarioStep) kind() (string, error) {
	var kinds []string
	if s.Emit != nil {
		kinds = append(kinds, "emit")
	}
	if s.Segment != nil {
		kinds = append(kinds, "segment")
	}
	if s.Run != nil {
		kinds = append(kinds, "run")
	}
	if s.Reset {
		kinds = append(kinds, "reset")
	}
	if len(kinds) != 1 {
		return "", fmt.Errorf("expected exactly one action, got %v", kinds)
	}
	return kinds[0], nil
}

// Config resolves the simulation configuration for a scenario on top of
// base, applying its preset and seed.
func (s *Scenario) Config(base *config.Config) (*config.Config, error) {
	cfg := *base
	if s.Preset != "" {
		preset := config.GetPreset(s.Preset)
		if preset == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		cfg = *preset
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	return &cfg, nil
}

// Setup builds a controller for the scenario with its starting scene.
func (s *Scenario) Setup(base *config.Config, registry *experiment.Registry, metrics []sim.Metric) (*sim.Controller, error) {
	cfg, err := s.Config(base)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(experiment.Config{Sim: cfg, Scene: s.Scene})
	if err := exp.Setup(registry, metrics); err != nil {
		return nil, err
	}
	return exp.Controller(), nil
}

// RunScenario executes all steps in a scenario against c
func RunScenario(ctx context.Context, scenario *Scenario, c *sim.Controller) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	cfg := c.Config()

	for i, step := range scenario.Steps {
		kind, err := step.kind()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		sr := StepResult{Index: i, Kind: kind}

		switch kind {
		case "emit":
			sr.Created = c.Emit(step.Emit.At, step.Emit.Count)
		case "segment":
			t := cfg.Segment.Thickness
			if step.Segment.Thickness != nil {
				t = *step.Segment.Thickness
			}
			if _, err := c.CreateSegment(step.Segment.From, step.Segment.To, t); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			sr.Created = 1
		case "reset":
			c.Reset()
		case "run":
			rs := step.Run
			at := geom.V(cfg.Screen.Width/2, cfg.Emitter.Y)
			if rs.EmitAt != nil {
				at = *rs.EmitAt
			}
			result, err := c.Run(ctx, sim.RunConfig{
				Duration:     rs.Duration,
				Dt:           cfg.Dt(),
				EmitAt:       at,
				EmitPerFrame: rs.EmitPerFrame,
				EmitFrames:   rs.EmitFrames,
				SampleEvery:  rs.SampleEvery,
				CheckFinite:  true,
			})
			if err != nil {
				return results, fmt.Errorf("step %d run: %w", i+1, err)
			}
			sr.Result = result
			sr.Created = result.Emitted
			sr.SaveAs = rs.SaveAs
		}

		sr.Grains = c.Len()
		results = append(results, sr)
	}

	return results, nil
}
