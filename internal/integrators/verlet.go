package integrators

import "github.com/san-kum/granular/internal/world"

// Verlet is velocity Verlet under constant gravity, which is exact for free
// flight. Damping is applied to the end-of-step velocity.
type Verlet struct {
	p Params
}

func NewVerlet(p Params) *Verlet {
	return &Verlet{p: p}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Integrate(grains []world.Grain, h float64) {
	g := v.p.Gravity
	dx := g.Scale(0.5 * h * h)
	dv := g.Scale(h)
	damp := v.p.Damping
	run(grains, v.p.Workers, func(gr *world.Grain) {
		gr.Prev = gr.Pos
		gr.Pos = gr.Pos.Add(gr.Vel.Scale(h)).Add(dx)
		gr.Vel = gr.Vel.Add(dv).Scale(damp)
	})
}
