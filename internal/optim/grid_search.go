// Package optim searches tunable parameter grids for the configuration that
// minimises a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/granular/internal/automation"
	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/experiment"
	"github.com/san-kum/granular/internal/sim"
)

var ErrNoResult = errors.New("optim: no combination produced the metric")

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid needs one range per parameter, got %d names and %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := automation.Tunables[name]; !ok {
			return nil, fmt.Errorf("parameter %s is not tunable", name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("parameter %s has an empty range", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of combinations in the grid.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Apply returns a copy of base with params written through the tunables.
func Apply(base *config.Config, params map[string]float64) *config.Config {
	cfg := *base
	for name, v := range params {
		if t, ok := automation.Tunables[name]; ok {
			t.Set(&cfg, v)
		}
	}
	return &cfg
}

// Search runs buildExperiment for every combination and returns the one
// with the lowest metricName. Combinations that fail to build or diverge
// are skipped; cancellation stops the search with ctx.Err().
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &bestParams)
	if err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrNoResult, metricName)
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if errors.Is(err, sim.ErrUnstable) || errors.Is(err, sim.ErrInvalidRun) {
				return nil
			}
			return err
		}

		val, ok := result.Metrics[metricName]
		if ok && val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// ParseAxis reads "name=min:max:steps" or "name=v1,v2,...".
func ParseAxis(s string) (string, []float64, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("axis %q: want name=min:max:steps or name=v1,v2", s)
	}

	if parts := strings.Split(rng, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return "", nil, fmt.Errorf("axis %q: %w", s, err)
		}
		if n < 1 {
			return "", nil, fmt.Errorf("axis %q: steps must be positive", s)
		}
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = lo
			if n > 1 {
				vals[i] = lo + float64(i)*(hi-lo)/float64(n-1)
			}
		}
		return name, vals, nil
	}

	fields := strings.Split(rng, ",")
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("axis %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}
