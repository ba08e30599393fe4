package sim

import (
	"math/rand"

	"github.com/san-kum/granular/internal/collision"
	"github.com/san-kum/granular/internal/events"
	"github.com/san-kum/granular/internal/integrators"
)

type options struct {
	integrator integrators.Integrator
	broadPhase collision.BroadPhase
	rng        *rand.Rand
	observers  []events.Observer
	logSize    int
}

type Option func(*options)

// WithIntegrator replaces the semi-implicit Euler integrator.
func WithIntegrator(i integrators.Integrator) Option {
	return func(o *options) { o.integrator = i }
}

// WithBroadPhase replaces the uniform grid.
func WithBroadPhase(bp collision.BroadPhase) Option {
	return func(o *options) { o.broadPhase = bp }
}

// WithRand supplies the random source for render tags and emission jitter.
// By default one is seeded from the configuration.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithEvents adds an observer for core events, alongside the built-in log.
func WithEvents(obs events.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithEventLogSize sets the capacity of the built-in event log.
func WithEventLogSize(n int) Option {
	return func(o *options) { o.logSize = n }
}
