package collision

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/granular/internal/events"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/world"
)

var window = geom.AABB{Min: geom.V(-50, -50), Max: geom.V(950, 1100)}

func testStore(t testing.TB, max int) *world.Store {
	t.Helper()
	s, err := world.NewStore(world.Params{
		Width:              900,
		Height:             900,
		GrainRadius:        2.5,
		GrainMass:          0.02,
		GrainFriction:      0.45,
		GrainRestitution:   0.05,
		SegmentFriction:    0.7,
		SegmentRestitution: 0,
		BoundaryThickness:  1,
		MaxParticles:       max,
	}, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func place(t testing.TB, s *world.Store, pos, vel geom.Vec2) *world.Grain {
	t.Helper()
	h, err := s.CreateGrain(pos)
	if err != nil {
		t.Fatal(err)
	}
	g, _ := s.Grain(h)
	g.Vel = vel
	return g
}

func defaultParams() Params {
	return Params{Iterations: 8, Correction: 1, RestitutionThreshold: 30}
}

func scatter(t testing.TB, s *world.Store, n int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		// Some grains fall outside the grid window on purpose.
		pos := geom.V(rng.Float64()*1100-100, rng.Float64()*1300-100)
		g := place(t, s, pos, geom.Vec2{})
		g.Prev = pos.Sub(geom.V(rng.Float64()*20-10, rng.Float64()*20-10))
	}
}

func TestGrid_MatchesNaive(t *testing.T) {
	for _, workers := range []int{1, 4} {
		s := testStore(t, 20000)
		s.CreateSegment(geom.V(100, 300), geom.V(700, 420), 2)
		s.CreateSegment(geom.V(500, 500), geom.V(500, 500), 2)
		scatter(t, s, 12000, 5)

		grid := NewGrid(window, 2.5, workers)
		naive := NewNaive()
		grains, segs := s.Grains(), s.Segments()
		grid.Build(grains, segs, s.Version())
		naive.Build(grains, segs, s.Version())

		gp, np := grid.GrainPairs(nil), naive.GrainPairs(nil)
		if len(gp) == 0 {
			t.Fatal("expected some candidate pairs")
		}
		comparePairs(t, "grain", gp, np)
		comparePairs(t, "segment", grid.SegmentPairs(nil), naive.SegmentPairs(nil))
	}
}

func comparePairs(t *testing.T, kind string, got, want []Pair) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s pairs: grid %d, naive %d", kind, len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s pair %d: grid %v, naive %v", kind, i, got[i], want[i])
		}
	}
}

func TestGrid_RebuildsSegmentsOnVersionChange(t *testing.T) {
	s := testStore(t, 10)
	place(t, s, geom.V(300, 300), geom.Vec2{})
	grid := NewGrid(window, 2.5, 1)

	grid.Build(s.Grains(), s.Segments(), s.Version())
	if n := len(grid.SegmentPairs(nil)); n != 0 {
		t.Fatalf("expected no segment candidates, got %d", n)
	}

	s.CreateSegment(geom.V(200, 302), geom.V(400, 302), 2)
	grid.Build(s.Grains(), s.Segments(), s.Version())
	pairs := grid.SegmentPairs(nil)
	if len(pairs) != 1 || pairs[0] != (Pair{0, 3}) {
		t.Errorf("expected pair with the new segment, got %v", pairs)
	}
}

func TestResolve_HeadOn(t *testing.T) {
	s := testStore(t, 10)
	place(t, s, geom.V(400, 400), geom.V(100, 0))
	place(t, s, geom.V(404, 400), geom.V(-100, 0))

	r := NewResolver(defaultParams(), NewNaive(), nil)
	st := r.Resolve(s)
	if st.Contacts != 1 {
		t.Fatalf("expected 1 contact, got %d", st.Contacts)
	}
	if math.Abs(st.MaxPenetration-1) > 1e-12 {
		t.Errorf("penetration = %v, want 1", st.MaxPenetration)
	}

	gs := s.Grains()
	va, vb := gs[0].Vel, gs[1].Vel
	if math.Abs(va.X+vb.X) > 1e-9 {
		t.Errorf("momentum not conserved: %v + %v", va, vb)
	}
	// Restitution 0.05 on an approach speed of 200.
	if sep := vb.X - va.X; math.Abs(sep-10) > 1e-9 {
		t.Errorf("separation speed = %v, want 10", sep)
	}
	if d := gs[1].Pos.X - gs[0].Pos.X; math.Abs(d-5) > 1e-9 {
		t.Errorf("grains still overlap: distance %v", d)
	}
}

func TestResolve_SlowContactIsInelastic(t *testing.T) {
	s := testStore(t, 10)
	place(t, s, geom.V(400, 400), geom.V(10, 0))
	place(t, s, geom.V(404.9, 400), geom.V(-10, 0))

	NewResolver(defaultParams(), NewNaive(), nil).Resolve(s)
	gs := s.Grains()
	if math.Abs(gs[0].Vel.X) > 1e-9 || math.Abs(gs[1].Vel.X) > 1e-9 {
		t.Errorf("expected a dead stop below the threshold, got %v %v", gs[0].Vel, gs[1].Vel)
	}
}

func TestResolve_FloorContainment(t *testing.T) {
	s := testStore(t, 10)
	g := place(t, s, geom.V(450, 897), geom.V(0, 50))
	g.Prev = geom.V(450, 896.5)

	st := NewResolver(defaultParams(), NewGrid(window, 2.5, 1), nil).Resolve(s)
	if st.Contacts != 1 {
		t.Fatalf("expected floor contact, got %d", st.Contacts)
	}
	got := s.Grains()[0]
	if math.Abs(got.Pos.Y-896) > 1e-9 {
		t.Errorf("grain at y=%v, want 896", got.Pos.Y)
	}
	if math.Abs(got.Vel.Y) > 1e-9 {
		t.Errorf("floor has no restitution, vy=%v", got.Vel.Y)
	}
}

func TestResolve_NoTunnelling(t *testing.T) {
	s := testStore(t, 10)
	// Moved 12 units in one substep, straight through the floor line.
	g := place(t, s, geom.V(450, 902), geom.V(0, 1440))
	g.Prev = geom.V(450, 890)

	NewResolver(defaultParams(), NewGrid(window, 2.5, 1), nil).Resolve(s)
	got := s.Grains()[0]
	if math.Abs(got.Pos.Y-896) > 1e-9 {
		t.Errorf("grain ended at y=%v, want 896 above the floor", got.Pos.Y)
	}
	if got.Vel.Y > 1e-9 {
		t.Errorf("grain still moving into the floor: %v", got.Vel)
	}
}

func TestResolve_GrainPushIntoFloorIsUndone(t *testing.T) {
	for _, bp := range []BroadPhase{NewNaive(), NewGrid(window, 2.5, 1)} {
		t.Run(bp.Name(), func(t *testing.T) {
			s := testStore(t, 10)
			// Too far from the floor to be a segment candidate at detection.
			g := place(t, s, geom.V(450, 895.9), geom.Vec2{})
			g.Prev = geom.V(450, 895.5)
			// An immovable neighbour overlapping from above pushes it 3.5
			// units down, past the floor line at 899.
			above := place(t, s, geom.V(450, 894.4), geom.Vec2{})
			above.InvMass = 0

			NewResolver(defaultParams(), bp, nil).Resolve(s)
			got := s.Grains()[0]
			if got.Pos.Y >= 899 {
				t.Fatalf("grain pushed through the floor to y=%v", got.Pos.Y)
			}
			if math.Abs(got.Pos.Y-896) > 1e-9 {
				t.Errorf("grain at y=%v, want 896", got.Pos.Y)
			}
		})
	}
}

func TestResolve_FrictionDoesNotReverse(t *testing.T) {
	s := testStore(t, 10)
	g := place(t, s, geom.V(450, 896.5), geom.V(20, 5))
	g.Prev = geom.V(450, 896.4)

	NewResolver(defaultParams(), NewNaive(), nil).Resolve(s)
	v := s.Grains()[0].Vel
	if v.X < 0 || v.X >= 20 {
		t.Errorf("friction should slow without reversing, vx=%v", v.X)
	}
}

func TestResolve_Degenerate(t *testing.T) {
	s := testStore(t, 10)
	place(t, s, geom.V(300, 300), geom.Vec2{})
	place(t, s, geom.V(300, 300), geom.Vec2{})
	s.CreateSegment(geom.V(600, 600), geom.V(600, 600), 2)
	place(t, s, geom.V(601, 600), geom.Vec2{})

	log := events.NewLog(8, events.LevelDebug)
	st := NewResolver(defaultParams(), NewGrid(window, 2.5, 1), log).Resolve(s)

	if st.Degenerate != 2 {
		t.Errorf("expected 2 degenerate pairs, got %d", st.Degenerate)
	}
	if st.Contacts != 0 {
		t.Errorf("degenerate pairs must not produce contacts, got %d", st.Contacts)
	}
	if log.Count(events.Degenerate) != 1 {
		t.Error("degenerate pairs were not reported")
	}
	for _, g := range s.Grains() {
		if !g.Pos.IsFinite() || !g.Vel.IsFinite() {
			t.Fatalf("degenerate pair corrupted state: %+v", g)
		}
	}
}

func TestStatsMerge(t *testing.T) {
	a := Stats{Candidates: 2, Contacts: 1, MaxPenetration: 0.3}
	a.Merge(Stats{Candidates: 3, Contacts: 2, Degenerate: 1, MaxPenetration: 0.1})
	want := Stats{Candidates: 5, Contacts: 3, Degenerate: 1, MaxPenetration: 0.3}
	if a != want {
		t.Errorf("merge = %+v, want %+v", a, want)
	}
}
