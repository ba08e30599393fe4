package collision

import (
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/world"
)

// Naive tests every pair. It is the reference the grid is checked against.
type Naive struct {
	grains []world.Grain
	boxes  []geom.AABB
}

func NewNaive() *Naive { return &Naive{} }

func (n *Naive) Name() string { return "naive" }

func (n *Naive) Build(grains []world.Grain, segments []world.Segment, _ uint64) {
	n.grains = grains
	r := maxRadius(grains)
	n.boxes = n.boxes[:0]
	for i := range segments {
		n.boxes = append(n.boxes, segmentBox(&segments[i], r))
	}
}

func (n *Naive) GrainPairs(dst []Pair) []Pair {
	gs := n.grains
	for i := range gs {
		for j := i + 1; j < len(gs); j++ {
			if near(&gs[i], &gs[j]) {
				dst = append(dst, Pair{int32(i), int32(j)})
			}
		}
	}
	return dst
}

func (n *Naive) SegmentPairs(dst []Pair) []Pair {
	for i := range n.grains {
		sweep := geom.SweptAABB(n.grains[i].Prev, n.grains[i].Pos)
		for j := range n.boxes {
			if n.boxes[j].Overlaps(sweep) {
				dst = append(dst, Pair{int32(i), int32(j)})
			}
		}
	}
	return dst
}
