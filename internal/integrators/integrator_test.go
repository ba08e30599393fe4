package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/world"
)

func grainsAt(n int, vel geom.Vec2) []world.Grain {
	gs := make([]world.Grain, n)
	for i := range gs {
		gs[i] = world.Grain{Pos: geom.V(float64(i), 0), Vel: vel, Radius: 2.5, Mass: 0.02, InvMass: 50}
	}
	return gs
}

func TestSemiImplicitEuler_SingleStep(t *testing.T) {
	e := NewSemiImplicitEuler(Params{Gravity: geom.V(0, 900), Damping: 0.999})
	gs := grainsAt(1, geom.V(10, 0))

	h := 1.0 / 120
	e.Integrate(gs, h)

	wantVel := geom.V(10*0.999, 900*h*0.999)
	if math.Abs(gs[0].Vel.X-wantVel.X) > 1e-12 || math.Abs(gs[0].Vel.Y-wantVel.Y) > 1e-12 {
		t.Errorf("vel = %v, want %v", gs[0].Vel, wantVel)
	}
	wantPos := wantVel.Scale(h)
	if math.Abs(gs[0].Pos.X-wantPos.X) > 1e-12 || math.Abs(gs[0].Pos.Y-wantPos.Y) > 1e-12 {
		t.Errorf("pos = %v, want %v", gs[0].Pos, wantPos)
	}
}

func TestDampingPerSubstep(t *testing.T) {
	e := NewSemiImplicitEuler(Params{Damping: 0.5})
	gs := grainsAt(1, geom.V(8, 0))

	e.Integrate(gs, 0.01)
	e.Integrate(gs, 0.01)

	if gs[0].Vel.X != 2 {
		t.Errorf("two substeps should damp by 0.5^2, got vx=%v", gs[0].Vel.X)
	}
}

func TestStability(t *testing.T) {
	tests := []struct {
		name string
		h    float64
	}{
		{"240Hz", 1.0 / 240},
		{"120Hz", 1.0 / 120},
		{"30Hz", 1.0 / 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewSemiImplicitEuler(Params{Gravity: geom.V(0, 900), Damping: 0.999})
			gs := grainsAt(1, geom.Vec2{})
			steps := int(2 / tt.h)
			for i := 0; i < steps; i++ {
				e.Integrate(gs, tt.h)
			}
			if !gs[0].Pos.IsFinite() || !gs[0].Vel.IsFinite() {
				t.Fatalf("state diverged: %+v", gs[0])
			}
			// Free fall for 2s under damping stays below the undamped bound.
			if gs[0].Vel.Y <= 0 || gs[0].Vel.Y > 900*2 {
				t.Errorf("unexpected velocity after 2s: %v", gs[0].Vel.Y)
			}
		})
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	p := Params{Gravity: geom.V(0, 900), Damping: 0.999}
	serial := grainsAt(10000, geom.V(3, -4))
	par := grainsAt(10000, geom.V(3, -4))

	p.Workers = 1
	s := NewSemiImplicitEuler(p)
	p.Workers = 8
	m := NewSemiImplicitEuler(p)

	for i := 0; i < 10; i++ {
		s.Integrate(serial, 1.0/120)
		m.Integrate(par, 1.0/120)
	}
	for i := range serial {
		if serial[i].Pos != par[i].Pos || serial[i].Vel != par[i].Vel {
			t.Fatalf("grain %d differs: %v vs %v", i, serial[i].Pos, par[i].Pos)
		}
	}
}

func TestVerlet_ExactFreeFall(t *testing.T) {
	v := NewVerlet(Params{Gravity: geom.V(0, 10), Damping: 1})
	gs := grainsAt(1, geom.Vec2{})
	for i := 0; i < 100; i++ {
		v.Integrate(gs, 0.01)
	}
	// y = g t^2 / 2 at t = 1
	if math.Abs(gs[0].Pos.Y-5) > 1e-9 {
		t.Errorf("y = %v, want 5", gs[0].Pos.Y)
	}
}

func TestExplicitEuler_LagsSemiImplicit(t *testing.T) {
	p := Params{Gravity: geom.V(0, 10), Damping: 1}
	a, b := grainsAt(1, geom.Vec2{}), grainsAt(1, geom.Vec2{})
	for i := 0; i < 10; i++ {
		NewExplicitEuler(p).Integrate(a, 0.1)
		NewSemiImplicitEuler(p).Integrate(b, 0.1)
	}
	if a[0].Pos.Y >= b[0].Pos.Y {
		t.Errorf("explicit Euler should fall less: %v vs %v", a[0].Pos.Y, b[0].Pos.Y)
	}
	if a[0].Vel != b[0].Vel {
		t.Errorf("velocities should match: %v vs %v", a[0].Vel, b[0].Vel)
	}
}
