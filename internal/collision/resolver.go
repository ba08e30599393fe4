package collision

import (
	"math"

	"github.com/san-kum/granular/internal/events"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/world"
)

// Params tune the solver.
type Params struct {
	// Iterations is the number of sequential-impulse sweeps per substep.
	Iterations int
	// Correction is the fraction of the measured overlap removed by the
	// positional pass; Slop is the overlap left in place.
	Correction float64
	Slop       float64
	// RestitutionThreshold is the approach speed below which contacts are
	// treated as perfectly inelastic, so resting grains do not jitter.
	RestitutionThreshold float64
}

// Stats summarises one Resolve call.
type Stats struct {
	Candidates     int
	Contacts       int
	Degenerate     int
	MaxPenetration float64
}

// Merge accumulates o into s, keeping the larger penetration.
func (s *Stats) Merge(o Stats) {
	s.Candidates += o.Candidates
	s.Contacts += o.Contacts
	s.Degenerate += o.Degenerate
	s.MaxPenetration = math.Max(s.MaxPenetration, o.MaxPenetration)
}

type contact struct {
	a, b     int32
	static   bool
	normal   geom.Vec2
	friction float64
	bias     float64
	mass     float64

	normalImpulse  float64
	tangentImpulse float64
}

type Resolver struct {
	p   Params
	bp  BroadPhase
	obs events.Observer

	pairs    []Pair
	segPairs []Pair
	contacts []contact
}

func NewResolver(p Params, bp BroadPhase, obs events.Observer) *Resolver {
	if p.Iterations < 1 {
		p.Iterations = 1
	}
	if obs == nil {
		obs = events.Discard
	}
	return &Resolver{p: p, bp: bp, obs: obs}
}

func (r *Resolver) BroadPhase() BroadPhase { return r.bp }

// Resolve detects every contact in s and resolves it. Grain-grain contacts
// are solved in (i, j) order, followed by grain-segment contacts in
// (grain, segment) order.
func (r *Resolver) Resolve(s *world.Store) Stats {
	grains := s.Grains()
	segs := s.Segments()
	r.bp.Build(grains, segs, s.Version())

	r.pairs = r.bp.GrainPairs(r.pairs[:0])
	r.segPairs = r.bp.SegmentPairs(r.segPairs[:0])
	r.contacts = r.contacts[:0]

	st := Stats{Candidates: len(r.pairs) + len(r.segPairs)}
	r.detect(grains, segs, &st)
	if st.Degenerate > 0 {
		r.obs.OnEvent(events.Event{
			Kind:    events.Degenerate,
			Level:   events.LevelDebug,
			Message: "skipped degenerate contacts",
			Count:   st.Degenerate,
		})
	}

	for it := 0; it < r.p.Iterations; it++ {
		r.solveVelocities(grains)
	}
	r.correctPositions(grains, segs)
	return st
}

func (r *Resolver) detect(grains []world.Grain, segs []world.Segment, st *Stats) {
	for _, p := range r.pairs {
		a, b := &grains[p.I], &grains[p.J]
		o, hit, degenerate := geom.CircleCircle(a.Pos, a.Radius, b.Pos, b.Radius)
		if degenerate {
			st.Degenerate++
			continue
		}
		if !hit {
			continue
		}
		r.addContact(a, b.Vel, p, false, o, b.InvMass, b.Friction, b.Restitution, st)
	}

	for _, p := range r.segPairs {
		g, seg := &grains[p.I], &segs[p.J]
		o, hit, degenerate := geom.SweptCircleSegment(g.Prev, g.Pos, g.Radius, seg.A, seg.B, seg.Thickness)
		if degenerate {
			st.Degenerate++
			continue
		}
		if !hit {
			continue
		}
		r.addContact(g, geom.Vec2{}, p, true, o, 0, seg.Friction, seg.Restitution, st)
	}
}

func (r *Resolver) addContact(a *world.Grain, vb geom.Vec2, p Pair, static bool, o geom.Overlap, invB, friction, restitution float64, st *Stats) {
	st.Contacts++
	st.MaxPenetration = math.Max(st.MaxPenetration, o.Depth)

	c := contact{
		a:        p.I,
		b:        p.J,
		static:   static,
		normal:   o.Normal,
		friction: math.Sqrt(a.Friction * friction),
		mass:     1 / (a.InvMass + invB),
	}
	vn := vb.Sub(a.Vel).Dot(o.Normal)
	if -vn > r.p.RestitutionThreshold {
		c.bias = -math.Min(a.Restitution, restitution) * vn
	}
	r.contacts = append(r.contacts, c)
}

func (r *Resolver) solveVelocities(grains []world.Grain) {
	for k := range r.contacts {
		c := &r.contacts[k]
		a := &grains[c.a]
		var b *world.Grain
		var vb geom.Vec2
		invB := 0.0
		if !c.static {
			b = &grains[c.b]
			vb = b.Vel
			invB = b.InvMass
		}

		// Friction first, bounded by the current normal impulse. The
		// increment never opposes the one that would stop sliding, so
		// friction cannot add energy when the normal impulse shrinks.
		t := c.normal.Perp()
		dv := vb.Sub(a.Vel)
		want := -c.mass * dv.Dot(t)
		maxF := c.friction * c.normalImpulse
		newT := math.Max(-maxF, math.Min(c.tangentImpulse+want, maxF))
		lambda := newT - c.tangentImpulse
		if lambda*want < 0 {
			lambda = 0
		}
		c.tangentImpulse += lambda
		pt := t.Scale(lambda)
		a.Vel = a.Vel.Sub(pt.Scale(a.InvMass))
		if b != nil {
			b.Vel = b.Vel.Add(pt.Scale(invB))
			vb = b.Vel
		}

		dv = vb.Sub(a.Vel)
		lambda = -c.mass * (dv.Dot(c.normal) - c.bias)
		newN := math.Max(c.normalImpulse+lambda, 0)
		lambda = newN - c.normalImpulse
		c.normalImpulse = newN
		pn := c.normal.Scale(lambda)
		a.Vel = a.Vel.Sub(pn.Scale(a.InvMass))
		if b != nil {
			b.Vel = b.Vel.Add(pn.Scale(invB))
		}
	}
}

// correctPositions re-measures overlaps and pushes bodies apart in
// proportion to inverse mass. Grain pushes can carry a grain towards a
// segment it was not paired with, so segment candidates are gathered again
// from the corrected positions and processed last. A grain whose path since
// the previous substep crossed a segment's core line ends on the side it
// came from.
func (r *Resolver) correctPositions(grains []world.Grain, segs []world.Segment) {
	for k := range r.contacts {
		c := &r.contacts[k]
		if c.static {
			continue
		}
		a, b := &grains[c.a], &grains[c.b]
		o, hit, _ := geom.CircleCircle(a.Pos, a.Radius, b.Pos, b.Radius)
		if !hit {
			continue
		}
		push := r.push(o.Depth) * c.mass
		a.Pos = a.Pos.Sub(o.Normal.Scale(push * a.InvMass))
		b.Pos = b.Pos.Add(o.Normal.Scale(push * b.InvMass))
	}

	r.segPairs = r.bp.SegmentPairs(r.segPairs[:0])
	for _, p := range r.segPairs {
		g, seg := &grains[p.I], &segs[p.J]
		o, hit, _ := geom.SweptCircleSegment(g.Prev, g.Pos, g.Radius, seg.A, seg.B, seg.Thickness)
		if !hit {
			continue
		}
		// Segment overlaps are removed in full.
		push := math.Max(o.Depth-math.Min(r.p.Slop, g.Radius/2), 0)
		g.Pos = g.Pos.Sub(o.Normal.Scale(push))
	}
}

func (r *Resolver) push(depth float64) float64 {
	return math.Max(depth-r.p.Slop, 0) * r.p.Correction
}
