// Package geom provides the 2D vector math and overlap routines used by the
// collision pipeline.
//
// All routines are pure and allocation free. Distances are returned together
// with a unit normal so callers can resolve a contact without recomputing the
// square root.
package geom

import "math"

// Vec2 is a point or direction in world units. +Y points down, matching
// screen coordinates.
type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2       { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2       { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2  { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64    { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Cross(o Vec2) float64  { return v.X*o.Y - v.Y*o.X }
func (v Vec2) LenSq() float64        { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Len() float64          { return math.Sqrt(v.LenSq()) }
func (v Vec2) Neg() Vec2             { return Vec2{-v.X, -v.Y} }
func (v Vec2) Perp() Vec2            { return Vec2{-v.Y, v.X} }
func (v Vec2) DistSq(o Vec2) float64 { return v.Sub(o).LenSq() }

// Normalize returns the unit vector and the original length. A zero vector is
// returned unchanged with length 0.
func (v Vec2) Normalize() (Vec2, float64) {
	l := v.Len()
	if l == 0 {
		return v, 0
	}
	inv := 1 / l
	return Vec2{v.X * inv, v.Y * inv}, l
}

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// AABB is an axis aligned box with Min <= Max on both axes.
type AABB struct {
	Min, Max Vec2
}

func (b AABB) Contains(p Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X && b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

func (b AABB) Expand(m float64) AABB {
	return AABB{Min: Vec2{b.Min.X - m, b.Min.Y - m}, Max: Vec2{b.Max.X + m, b.Max.Y + m}}
}

// SegmentAABB bounds the segment a-b inflated by pad on every side.
func SegmentAABB(a, b Vec2, pad float64) AABB {
	box := AABB{
		Min: Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Max: Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)},
	}
	return box.Expand(pad)
}
