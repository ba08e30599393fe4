package integrators

import "github.com/san-kum/granular/internal/world"

// SemiImplicitEuler updates velocity first and moves with the new velocity:
//
//	v += g*h; v *= damping; x += v*h
type SemiImplicitEuler struct {
	p Params
}

func NewSemiImplicitEuler(p Params) *SemiImplicitEuler {
	return &SemiImplicitEuler{p: p}
}

func (e *SemiImplicitEuler) Name() string { return "semi_implicit" }

func (e *SemiImplicitEuler) Integrate(grains []world.Grain, h float64) {
	dv := e.p.Gravity.Scale(h)
	damp := e.p.Damping
	run(grains, e.p.Workers, func(g *world.Grain) {
		g.Prev = g.Pos
		g.Vel = g.Vel.Add(dv).Scale(damp)
		g.Pos = g.Pos.Add(g.Vel.Scale(h))
	})
}

// ExplicitEuler moves with the old velocity, then updates it. It gains energy
// under gravity and exists for comparison only.
type ExplicitEuler struct {
	p Params
}

func NewExplicitEuler(p Params) *ExplicitEuler {
	return &ExplicitEuler{p: p}
}

func (e *ExplicitEuler) Name() string { return "euler" }

func (e *ExplicitEuler) Integrate(grains []world.Grain, h float64) {
	dv := e.p.Gravity.Scale(h)
	damp := e.p.Damping
	run(grains, e.p.Workers, func(g *world.Grain) {
		g.Prev = g.Pos
		g.Pos = g.Pos.Add(g.Vel.Scale(h))
		g.Vel = g.Vel.Add(dv).Scale(damp)
	})
}
