// Package sim drives the physics core one frame at a time.
//
// A [Controller] owns the world store and runs each frame as a fixed number
// of substeps, each an integration followed by collision resolution. It
// enforces the particle cap, culls grains that leave the extended playfield
// and exposes the creation and reset operations used by the front ends.
// Everything runs on the caller's goroutine; front ends must not call into a
// controller concurrently.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/granular/internal/collision"
	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/events"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/integrators"
	"github.com/san-kum/granular/internal/world"
)

const defaultLogSize = 256

type Controller struct {
	cfg        config.Config
	store      *world.Store
	integrator integrators.Integrator
	resolver   *collision.Resolver
	rng        *rand.Rand
	log        *events.Log
	obs        events.Observer

	metrics   []Metric
	observers []Observer

	bounds  geom.AABB
	frame   int
	time    float64
	emitted int
	last    collision.Stats
}

// New validates cfg and builds a controller with an empty world holding only
// the boundary segments.
func New(cfg *config.Config, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, ErrNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}

	o := options{logSize: defaultLogSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(cfg.Seed))
	}

	c := &Controller{
		cfg:    *cfg,
		rng:    o.rng,
		log:    events.NewLog(o.logSize, events.LevelInfo),
		bounds: CullWindow(cfg),
	}
	c.obs = c.log
	if len(o.observers) > 0 {
		c.obs = append(events.Multi{c.log}, o.observers...)
	}

	store, err := world.NewStore(StoreParams(cfg), c.rng, c.obs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}
	c.store = store

	c.integrator = o.integrator
	if c.integrator == nil {
		c.integrator = integrators.NewSemiImplicitEuler(IntegratorParams(cfg))
	}
	bp := o.broadPhase
	if bp == nil {
		bp = collision.NewGrid(c.bounds, cfg.Grain.Radius, cfg.Physics.Workers)
	}
	c.resolver = collision.NewResolver(ResolverParams(cfg), bp, c.obs)

	return c, nil
}

// StoreParams extracts the store constants from cfg.
func StoreParams(cfg *config.Config) world.Params {
	return world.Params{
		Width:              cfg.Screen.Width,
		Height:             cfg.Screen.Height,
		GrainRadius:        cfg.Grain.Radius,
		GrainMass:          cfg.Grain.Mass,
		GrainFriction:      cfg.Grain.Friction,
		GrainRestitution:   cfg.Grain.Restitution,
		SegmentFriction:    cfg.Segment.Friction,
		SegmentRestitution: cfg.Segment.Restitution,
		BoundaryThickness:  cfg.Segment.BoundaryThickness,
		MaxParticles:       cfg.Limits.MaxParticles,
	}
}

func IntegratorParams(cfg *config.Config) integrators.Params {
	return integrators.Params{
		Gravity: cfg.Physics.Gravity,
		Damping: cfg.Physics.Damping,
		Workers: cfg.Physics.Workers,
	}
}

func ResolverParams(cfg *config.Config) collision.Params {
	return collision.Params{
		Iterations:           cfg.Physics.Iterations,
		Correction:           cfg.Physics.Correction,
		Slop:                 cfg.Physics.Slop,
		RestitutionThreshold: cfg.Physics.RestitutionThreshold,
	}
}

// Screen is the visible playfield rectangle.
func Screen(cfg *config.Config) geom.AABB {
	return geom.AABB{Max: geom.V(cfg.Screen.Width, cfg.Screen.Height)}
}

// CullWindow is the screen rectangle expanded by the configured margins.
func CullWindow(cfg *config.Config) geom.AABB {
	return expandMargins(Screen(cfg), cfg.Limits.CullMargin)
}

func expandMargins(b geom.AABB, m config.MarginConfig) geom.AABB {
	return geom.AABB{
		Min: geom.V(b.Min.X-m.Left, b.Min.Y-m.Top),
		Max: geom.V(b.Max.X+m.Right, b.Max.Y+m.Bottom),
	}
}

func (c *Controller) AddMetric(m Metric)     { c.metrics = append(c.metrics, m) }
func (c *Controller) AddObserver(o Observer) { c.observers = append(c.observers, o) }

func (c *Controller) Config() config.Config              { return c.cfg }
func (c *Controller) Store() *world.Store                { return c.store }
func (c *Controller) Events() *events.Log                { return c.log }
func (c *Controller) Integrator() integrators.Integrator { return c.integrator }
func (c *Controller) BroadPhase() collision.BroadPhase   { return c.resolver.BroadPhase() }
func (c *Controller) Bounds() geom.AABB                  { return c.bounds }
func (c *Controller) Time() float64                      { return c.time }
func (c *Controller) FrameCount() int                    { return c.frame }
func (c *Controller) LastStats() collision.Stats         { return c.last }
func (c *Controller) Grains() []world.Grain              { return c.store.Grains() }
func (c *Controller) Segments() []world.Segment          { return c.store.Segments() }
func (c *Controller) Len() int                           { return c.store.Len() }
func (c *Controller) Rand() *rand.Rand                   { return c.rng }

func (c *Controller) CreateGrain(pos geom.Vec2) (world.GrainHandle, error) {
	return c.store.CreateGrain(pos)
}

func (c *Controller) CreateSegment(a, b geom.Vec2, thickness float64) (world.SegmentHandle, error) {
	return c.store.CreateSegment(a, b, thickness)
}

// Step advances the world by dt in Substeps equal substeps. A non-positive or
// non-finite dt does nothing. The returned stats cover every substep.
func (c *Controller) Step(dt float64) collision.Stats {
	var st collision.Stats
	if !(dt > 0) || math.IsInf(dt, 0) {
		return st
	}
	n := c.cfg.Physics.Substeps
	h := dt / float64(n)
	for i := 0; i < n; i++ {
		c.integrator.Integrate(c.store.Grains(), h)
		st.Merge(c.resolver.Resolve(c.store))
	}
	c.time += dt
	c.last = st
	return st
}

// Cull removes every grain whose centre lies outside screen expanded by the
// configured cull margins (inclusive) and returns how many were removed.
func (c *Controller) Cull(screen geom.AABB) int {
	window := expandMargins(screen, c.cfg.Limits.CullMargin)
	n := c.store.RemoveIf(func(g *world.Grain) bool {
		return !window.Contains(g.Pos)
	})
	if n > 0 {
		c.obs.OnEvent(events.Event{Kind: events.GrainCulled, Level: events.LevelDebug, Message: "grains culled", Count: n})
	}
	return n
}

// Emit attempts count grains at pos with horizontal jitter drawn uniformly
// from [-spread, spread]. Attempts rejected at capacity are absorbed. It
// returns the number of grains created.
func (c *Controller) Emit(pos geom.Vec2, count int) int {
	spread := c.cfg.Emitter.Spread
	created := 0
	for i := 0; i < count; i++ {
		p := geom.V(pos.X+(c.rng.Float64()*2-1)*spread, pos.Y)
		if _, err := c.store.CreateGrain(p); err != nil {
			if errors.Is(err, world.ErrCapacityExceeded) {
				continue
			}
			break
		}
		created++
	}
	if created > 0 {
		c.obs.OnEvent(events.Event{Kind: events.Emitted, Level: events.LevelDebug, Message: "grains emitted", Pos: pos, Count: created})
	}
	c.emitted += created
	return created
}

// Reset clears the world back to its three boundaries and rewinds the clock.
func (c *Controller) Reset() {
	c.store.Reset()
	c.frame = 0
	c.time = 0
	c.emitted = 0
	c.last = collision.Stats{}
}

// Frame runs one presentation frame: Step, Cull against the screen, then
// metrics and observers.
func (c *Controller) Frame(dt float64) Frame {
	st := c.Step(dt)
	culled := c.Cull(Screen(&c.cfg))

	f := Frame{
		Index:   c.frame,
		Time:    c.time,
		Grains:  c.store.Grains(),
		Stats:   st,
		Emitted: c.emitted,
		Culled:  culled,
	}
	c.emitted = 0
	c.frame++

	for _, m := range c.metrics {
		m.Observe(&f)
	}
	for _, o := range c.observers {
		o.OnFrame(&f)
	}
	return f
}

// Run drives the controller headless for rc.Duration seconds. It stops early
// when ctx is done, returning the partial result together with ctx.Err().
func (c *Controller) Run(ctx context.Context, rc RunConfig) (*Result, error) {
	if err := validateRun(rc); err != nil {
		return nil, err
	}

	frames := int(math.Round(rc.Duration / rc.Dt))
	every := rc.SampleEvery
	if every < 1 {
		every = 1
	}
	result := &Result{
		Samples: make([]Sample, 0, frames/every+1),
		Metrics: make(map[string]float64),
	}
	for _, m := range c.metrics {
		m.Reset()
	}

	// Grains emitted before the run belong to none of its frames.
	c.emitted = 0

	start := time.Now()
	defer func() { result.Elapsed = time.Since(start) }()

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			c.collect(result)
			return result, ctx.Err()
		default:
		}

		if rc.EmitPerFrame > 0 && (rc.EmitFrames <= 0 || i < rc.EmitFrames) {
			c.Emit(rc.EmitAt, rc.EmitPerFrame)
		}
		f := c.Frame(rc.Dt)
		result.Frames++
		result.Emitted += f.Emitted
		result.Culled += f.Culled

		if i%every == 0 || i == frames-1 {
			result.Samples = append(result.Samples, sampleOf(&f))
		}
		if rc.CheckFinite && !finite(f.Grains) {
			c.collect(result)
			return result, &StepError{Frame: f.Index, Time: f.Time, Err: ErrUnstable}
		}
	}

	c.collect(result)
	return result, nil
}

func (c *Controller) collect(r *Result) {
	for _, m := range c.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func validateRun(rc RunConfig) error {
	if !(rc.Dt > 0) || math.IsInf(rc.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidRun, rc.Dt)
	}
	if !(rc.Duration > 0) || math.IsInf(rc.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidRun, rc.Duration)
	}
	if rc.EmitPerFrame < 0 {
		return fmt.Errorf("%w: emission rate must be non-negative, got %d", ErrInvalidRun, rc.EmitPerFrame)
	}
	return nil
}

func sampleOf(f *Frame) Sample {
	s := Sample{
		Time:           f.Time,
		Grains:         len(f.Grains),
		Contacts:       f.Stats.Contacts,
		MaxPenetration: f.Stats.MaxPenetration,
		Emitted:        f.Emitted,
		Culled:         f.Culled,
	}
	for i := range f.Grains {
		g := &f.Grains[i]
		s.KineticEnergy += g.KineticEnergy()
		s.MaxSpeed = math.Max(s.MaxSpeed, g.Vel.Len())
	}
	return s
}

func finite(grains []world.Grain) bool {
	for i := range grains {
		if !grains[i].Pos.IsFinite() || !grains[i].Vel.IsFinite() {
			return false
		}
	}
	return true
}
