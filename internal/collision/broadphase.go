// Package collision finds and resolves contacts between grains and segments.
//
// Each substep runs a broad phase that lists candidate pairs, a narrow phase
// that measures overlaps, a sequential-impulse velocity solve and a final
// positional correction. Candidate pairs are always produced in
// lexicographic order of grain index, which is creation order, so the
// solver visits contacts in the same order regardless of the broad phase in
// use or the number of workers.
package collision

import (
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/world"
)

// Pair indexes two bodies. For grain pairs I < J are grain indices; for
// segment pairs I is a grain index and J a segment index.
type Pair struct {
	I, J int32
}

// BroadPhase lists candidate pairs for one substep. Build must be called
// before the pair queries; segVersion lets implementations cache the static
// segment layout.
type BroadPhase interface {
	Name() string
	Build(grains []world.Grain, segments []world.Segment, segVersion uint64)
	GrainPairs(dst []Pair) []Pair
	SegmentPairs(dst []Pair) []Pair
}

// near is the cheap box test shared by every broad phase.
func near(a, b *world.Grain) bool {
	r := a.Radius + b.Radius
	dx := a.Pos.X - b.Pos.X
	dy := a.Pos.Y - b.Pos.Y
	return dx < r && dx > -r && dy < r && dy > -r
}

// segmentBox is the region a grain centre must lie in to touch s.
func segmentBox(s *world.Segment, maxRadius float64) geom.AABB {
	return geom.SegmentAABB(s.A, s.B, s.Thickness/2+maxRadius)
}

func maxRadius(grains []world.Grain) float64 {
	r := 0.0
	for i := range grains {
		if grains[i].Radius > r {
			r = grains[i].Radius
		}
	}
	return r
}
