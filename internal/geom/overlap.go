package geom

import "math"

// Overlap describes an interpenetration. Normal points from the first shape
// towards the second; Depth is positive.
type Overlap struct {
	Normal Vec2
	Depth  float64
}

// ClosestOnSegment returns the point of segment a-b nearest to p and the
// clamped parameter t in [0,1]. ok is false for a zero-length segment.
func ClosestOnSegment(p, a, b Vec2) (q Vec2, t float64, ok bool) {
	ab := b.Sub(a)
	l2 := ab.LenSq()
	if l2 == 0 {
		return a, 0, false
	}
	t = p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.Scale(t)), t, true
}

// DistToSegment is the distance from p to the finite segment a-b.
func DistToSegment(p, a, b Vec2) float64 {
	q, _, _ := ClosestOnSegment(p, a, b)
	return p.Sub(q).Len()
}

// CircleCircle tests two circles. degenerate is true when the circles overlap
// but their centres coincide, in which case no normal exists.
func CircleCircle(c1 Vec2, r1 float64, c2 Vec2, r2 float64) (o Overlap, hit, degenerate bool) {
	d := c2.Sub(c1)
	sum := r1 + r2
	d2 := d.LenSq()
	if d2 >= sum*sum {
		return Overlap{}, false, false
	}
	if d2 == 0 {
		return Overlap{}, false, true
	}
	dist := math.Sqrt(d2)
	inv := 1 / dist
	return Overlap{Normal: Vec2{d.X * inv, d.Y * inv}, Depth: sum - dist}, true, false
}

// CircleSegment tests a circle against a segment of the given thickness.
// The normal points from the circle towards the segment surface.
// degenerate is true for a zero-length segment or a centre lying exactly on
// the segment's core line, where no normal exists.
func CircleSegment(c Vec2, r float64, a, b Vec2, thickness float64) (o Overlap, hit, degenerate bool) {
	q, _, ok := ClosestOnSegment(c, a, b)
	if !ok {
		return Overlap{}, false, true
	}
	reach := r + thickness/2
	d := q.Sub(c)
	d2 := d.LenSq()
	if d2 >= reach*reach {
		return Overlap{}, false, false
	}
	if d2 == 0 {
		return Overlap{}, false, true
	}
	dist := math.Sqrt(d2)
	inv := 1 / dist
	return Overlap{Normal: Vec2{d.X * inv, d.Y * inv}, Depth: reach - dist}, true, false
}

// SweptCircleSegment is CircleSegment for a circle whose centre moved from
// prev to c during the last step. If the centre crossed the segment's core
// line within its extent, the overlap pushes it back to the side it came
// from, with a depth covering the whole crossing.
func SweptCircleSegment(prev, c Vec2, r float64, a, b Vec2, thickness float64) (o Overlap, hit, degenerate bool) {
	ab := b.Sub(a)
	n, l := ab.Perp().Normalize()
	if l == 0 {
		return Overlap{}, false, true
	}
	sp := prev.Sub(a).Dot(n)
	sc := c.Sub(a).Dot(n)
	if (sp < 0 && sc >= 0) || (sp > 0 && sc <= 0) {
		u := sp / (sp - sc)
		q := prev.Add(c.Sub(prev).Scale(u))
		t := q.Sub(a).Dot(ab) / (l * l)
		if t >= 0 && t <= 1 {
			if sp > 0 {
				n = n.Neg()
			}
			return Overlap{Normal: n, Depth: r + thickness/2 + math.Abs(sc)}, true, false
		}
	}
	return CircleSegment(c, r, a, b, thickness)
}

// SweptAABB bounds the path of a point moving from a to b.
func SweptAABB(a, b Vec2) AABB {
	return SegmentAABB(a, b, 0)
}
