package geom

import (
	"math"
	"testing"
)

func TestVec2_Arithmetic(t *testing.T) {
	a := V(1, 2)
	b := V(4, 6)

	if got := a.Add(b); got != V(5, 8) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != V(3, 4) {
		t.Errorf("Sub = %v", got)
	}
	if got := b.Sub(a).Len(); got != 5 {
		t.Errorf("Len = %v, want 5", got)
	}
	if got := a.Dot(b); got != 16 {
		t.Errorf("Dot = %v, want 16", got)
	}
	if got := a.Cross(b); got != -2 {
		t.Errorf("Cross = %v, want -2", got)
	}

	n, l := V(0, 0).Normalize()
	if l != 0 || n != V(0, 0) {
		t.Errorf("Normalize(0) = %v, %v", n, l)
	}
}

func TestClosestOnSegment(t *testing.T) {
	tests := []struct {
		name  string
		p     Vec2
		wantQ Vec2
		wantT float64
	}{
		{"interior", V(5, 3), V(5, 0), 0.5},
		{"before start", V(-4, 1), V(0, 0), 0},
		{"past end", V(14, -2), V(10, 0), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, tp, ok := ClosestOnSegment(tt.p, V(0, 0), V(10, 0))
			if !ok {
				t.Fatal("expected non-degenerate segment")
			}
			if q != tt.wantQ || tp != tt.wantT {
				t.Errorf("got q=%v t=%v, want q=%v t=%v", q, tp, tt.wantQ, tt.wantT)
			}
		})
	}

	if _, _, ok := ClosestOnSegment(V(1, 1), V(3, 3), V(3, 3)); ok {
		t.Error("zero-length segment should report !ok")
	}
}

func TestCircleCircle(t *testing.T) {
	tests := []struct {
		name      string
		c2        Vec2
		hit       bool
		depth     float64
		degen     bool
		wantNormX float64
	}{
		{"separated", V(6, 0), false, 0, false, 0},
		{"touching", V(5, 0), false, 0, false, 0},
		{"overlap", V(4, 0), true, 1, false, 1},
		{"coincident", V(0, 0), false, 0, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, hit, degen := CircleCircle(V(0, 0), 2.5, tt.c2, 2.5)
			if hit != tt.hit || degen != tt.degen {
				t.Fatalf("hit=%v degen=%v, want %v %v", hit, degen, tt.hit, tt.degen)
			}
			if hit {
				if math.Abs(o.Depth-tt.depth) > 1e-12 {
					t.Errorf("depth = %v, want %v", o.Depth, tt.depth)
				}
				if o.Normal.X != tt.wantNormX {
					t.Errorf("normal = %v", o.Normal)
				}
			}
		})
	}
}

func TestCircleSegment(t *testing.T) {
	a, b := V(0, 100), V(200, 100)

	o, hit, degen := CircleSegment(V(50, 97.5), 2.5, a, b, 1)
	if !hit || degen {
		t.Fatalf("expected hit, got hit=%v degen=%v", hit, degen)
	}
	if math.Abs(o.Depth-0.5) > 1e-12 {
		t.Errorf("depth = %v, want 0.5", o.Depth)
	}
	if o.Normal != V(0, 1) {
		t.Errorf("normal = %v, want (0,1)", o.Normal)
	}

	if _, hit, _ := CircleSegment(V(50, 96.9), 2.5, a, b, 1); hit {
		t.Error("grain resting above the surface should not hit")
	}

	// Past the end cap the distance is measured to the endpoint.
	if _, hit, _ := CircleSegment(V(203, 100), 2.5, a, b, 1); hit {
		t.Error("grain beyond the end cap should not hit")
	}

	if _, _, degen := CircleSegment(V(50, 50), 2.5, V(1, 1), V(1, 1), 2); !degen {
		t.Error("zero-length segment should be degenerate")
	}
	if _, _, degen := CircleSegment(V(50, 100), 2.5, a, b, 1); !degen {
		t.Error("centre on the core line should be degenerate")
	}
}

func TestSegmentAABB(t *testing.T) {
	box := SegmentAABB(V(10, 5), V(0, 20), 1)
	want := AABB{Min: V(-1, 4), Max: V(11, 21)}
	if box != want {
		t.Errorf("SegmentAABB = %v, want %v", box, want)
	}
	if !box.Contains(V(5, 10)) || box.Contains(V(12, 10)) {
		t.Error("Contains mismatch")
	}
}

func TestSweptCircleSegment(t *testing.T) {
	a, b := V(0, 100), V(200, 100)

	tests := []struct {
		name       string
		prev, cur  Vec2
		wantHit    bool
		wantNormal Vec2
		wantDepth  float64
	}{
		{"crossed from above", V(50, 90), V(50, 105), true, V(0, 1), 8},
		{"crossed from below", V(50, 110), V(50, 99), true, V(0, -1), 4},
		{"landed on the line", V(50, 90), V(50, 100), true, V(0, 1), 3},
		{"no crossing, touching", V(50, 90), V(50, 98), true, V(0, 1), 1},
		{"no crossing, clear", V(50, 90), V(50, 96), false, Vec2{}, 0},
		{"crossed the line outside the segment", V(250, 90), V(250, 110), false, Vec2{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, hit, degen := SweptCircleSegment(tt.prev, tt.cur, 2.5, a, b, 1)
			if degen {
				t.Fatal("unexpected degenerate")
			}
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if !hit {
				return
			}
			if o.Normal != tt.wantNormal {
				t.Errorf("normal = %v, want %v", o.Normal, tt.wantNormal)
			}
			if math.Abs(o.Depth-tt.wantDepth) > 1e-9 {
				t.Errorf("depth = %v, want %v", o.Depth, tt.wantDepth)
			}
			// Pushing back by the depth leaves the circle just touching.
			out := tt.cur.Sub(o.Normal.Scale(o.Depth))
			if d := DistToSegment(out, a, b); math.Abs(d-3) > 1e-9 {
				t.Errorf("resolved distance %v, want 3", d)
			}
		})
	}

	if _, _, degen := SweptCircleSegment(V(0, 0), V(1, 1), 2.5, V(5, 5), V(5, 5), 1); !degen {
		t.Error("zero-length segment should be degenerate")
	}
}
