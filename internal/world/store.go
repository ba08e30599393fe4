// Package world owns every grain and segment of a simulation.
//
// Grains live in a dense slice kept in creation order, so any traversal of
// [Store.Grains] visits them in the same order on every run. Handles resolve
// through a slot table carrying a generation counter: removing a grain bumps
// the generation, so stale handles are detected instead of aliasing a new
// grain. Removal only marks the grain; [Store.Compact] closes the gaps in a
// single stable pass.
package world

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/granular/internal/events"
	"github.com/san-kum/granular/internal/geom"
)

type slot struct {
	pos  int
	gen  uint32
	used bool
}

type Store struct {
	p   Params
	rng *rand.Rand
	obs events.Observer

	grains []Grain
	slots  []slot
	free   []uint32
	dead   int
	seq    uint64

	segments []Segment
	epoch    uint32
	version  uint64
}

// NewStore builds a store holding the three boundary segments. rng drives
// render tag selection; obs receives diagnostics and may be nil.
func NewStore(p Params, rng *rand.Rand, obs events.Observer) (*Store, error) {
	if !(p.GrainRadius > 0) || !(p.GrainMass > 0) || !(p.Width > 0) || !(p.Height > 0) {
		return nil, fmt.Errorf("%w: radius %g, mass %g, size %gx%g", ErrInvalidGeometry, p.GrainRadius, p.GrainMass, p.Width, p.Height)
	}
	if !(p.BoundaryThickness >= 0) || p.MaxParticles <= 0 {
		return nil, fmt.Errorf("%w: boundary thickness %g, capacity %d", ErrInvalidGeometry, p.BoundaryThickness, p.MaxParticles)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if obs == nil {
		obs = events.Discard
	}

	s := &Store{
		p:        p,
		rng:      rng,
		obs:      obs,
		grains:   make([]Grain, 0, min(p.MaxParticles, 4096)),
		segments: make([]Segment, 0, 8),
		epoch:    1,
	}
	s.createBoundaries()
	return s, nil
}

func (s *Store) Params() Params { return s.p }

// Len is the number of live grains.
func (s *Store) Len() int { return len(s.grains) - s.dead }

func (s *Store) Cap() int { return s.p.MaxParticles }

func (s *Store) SegmentCount() int { return len(s.segments) }

// Version changes whenever the segment set changes.
func (s *Store) Version() uint64 { return s.version }

// CreateGrain adds a resting grain at pos. At capacity it returns
// ErrCapacityExceeded and leaves the store untouched.
func (s *Store) CreateGrain(pos geom.Vec2) (GrainHandle, error) {
	if s.Len() >= s.p.MaxParticles {
		s.obs.OnEvent(events.Event{
			Kind:    events.CapacityExceeded,
			Level:   events.LevelWarn,
			Message: "particle limit reached",
			Pos:     pos,
			Count:   s.p.MaxParticles,
		})
		return GrainHandle{}, ErrCapacityExceeded
	}
	if !pos.IsFinite() {
		return GrainHandle{}, fmt.Errorf("%w: grain position %v", ErrInvalidGeometry, pos)
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{gen: 1})
	}
	sl := &s.slots[idx]
	sl.pos = len(s.grains)
	sl.used = true
	h := GrainHandle{index: idx, gen: sl.gen}

	r, m := s.p.GrainRadius, s.p.GrainMass
	tag := TagSandA
	if s.rng.Intn(2) == 1 {
		tag = TagSandB
	}
	s.seq++
	s.grains = append(s.grains, Grain{
		Pos:         pos,
		Prev:        pos,
		Radius:      r,
		Mass:        m,
		InvMass:     1 / m,
		Inertia:     0.5 * m * r * r,
		Friction:    s.p.GrainFriction,
		Restitution: s.p.GrainRestitution,
		Tag:         tag,
		Seq:         s.seq,
		handle:      h,
	})

	s.obs.OnEvent(events.Event{Kind: events.GrainCreated, Level: events.LevelDebug, Message: "grain created", Pos: pos})
	return h, nil
}

// Grain resolves a handle. The pointer is valid until the next mutating call.
func (s *Store) Grain(h GrainHandle) (*Grain, bool) {
	if h.IsZero() || int(h.index) >= len(s.slots) {
		return nil, false
	}
	sl := s.slots[h.index]
	if !sl.used || sl.gen != h.gen {
		return nil, false
	}
	return &s.grains[sl.pos], true
}

// RemoveGrain invalidates h immediately. The grain stays in the dense slice,
// marked dead, until the next Compact.
func (s *Store) RemoveGrain(h GrainHandle) error {
	g, ok := s.Grain(h)
	if !ok {
		return ErrStaleHandle
	}
	s.kill(g)
	return nil
}

func (s *Store) kill(g *Grain) {
	sl := &s.slots[g.handle.index]
	sl.used = false
	sl.gen++
	s.free = append(s.free, g.handle.index)
	g.dead = true
	s.dead++
}

// RemoveIf marks every live grain matching pred and compacts once. It returns
// the number removed.
func (s *Store) RemoveIf(pred func(*Grain) bool) int {
	n := 0
	for i := range s.grains {
		g := &s.grains[i]
		if g.dead || !pred(g) {
			continue
		}
		s.kill(g)
		n++
	}
	s.Compact()
	return n
}

// Compact drops dead grains, preserving the creation order of survivors.
func (s *Store) Compact() {
	if s.dead == 0 {
		return
	}
	w := 0
	for i := range s.grains {
		if s.grains[i].dead {
			continue
		}
		if w != i {
			s.grains[w] = s.grains[i]
		}
		s.slots[s.grains[w].handle.index].pos = w
		w++
	}
	clear(s.grains[w:])
	s.grains = s.grains[:w]
	s.dead = 0
}

// Grains returns the live grains in creation order, compacting first if
// needed. The slice may be written through but not resized, and is valid
// until the next mutating call.
func (s *Store) Grains() []Grain {
	s.Compact()
	return s.grains
}

// CreateSegment appends a static segment. Zero-length segments are accepted;
// the narrow phase skips them.
func (s *Store) CreateSegment(a, b geom.Vec2, thickness float64) (SegmentHandle, error) {
	return s.addSegment(a, b, thickness, false)
}

func (s *Store) addSegment(a, b geom.Vec2, thickness float64, boundary bool) (SegmentHandle, error) {
	if !(thickness >= 0) || math.IsInf(thickness, 0) || !a.IsFinite() || !b.IsFinite() {
		return SegmentHandle{}, fmt.Errorf("%w: segment %v-%v thickness %g", ErrInvalidGeometry, a, b, thickness)
	}
	s.segments = append(s.segments, Segment{
		A:           a,
		B:           b,
		Thickness:   thickness,
		Friction:    s.p.SegmentFriction,
		Restitution: s.p.SegmentRestitution,
		Tag:         TagBarrier,
		Boundary:    boundary,
	})
	s.version++
	s.obs.OnEvent(events.Event{Kind: events.SegmentCreated, Level: events.LevelDebug, Message: "segment created", Pos: a, B: b})
	return SegmentHandle{index: len(s.segments) - 1, epoch: s.epoch}, nil
}

func (s *Store) Segment(h SegmentHandle) (*Segment, bool) {
	if h.epoch != s.epoch || h.index < 0 || h.index >= len(s.segments) {
		return nil, false
	}
	return &s.segments[h.index], true
}

// Segments returns boundaries first, then user segments in creation order.
func (s *Store) Segments() []Segment { return s.segments }

// Reset removes every grain and segment, then recreates the boundaries.
// Outstanding handles become stale.
func (s *Store) Reset() {
	for i := range s.slots {
		if s.slots[i].used {
			s.slots[i].used = false
			s.slots[i].gen++
		}
	}
	s.free = s.free[:0]
	for i := len(s.slots) - 1; i >= 0; i-- {
		s.free = append(s.free, uint32(i))
	}
	clear(s.grains)
	s.grains = s.grains[:0]
	s.dead = 0

	s.segments = s.segments[:0]
	s.epoch++
	s.createBoundaries()

	s.obs.OnEvent(events.Event{Kind: events.Reset, Level: events.LevelInfo, Message: "world reset"})
}

func (s *Store) createBoundaries() {
	w, h, t := s.p.Width, s.p.Height, s.p.BoundaryThickness
	s.addSegment(geom.V(0, h-1), geom.V(w, h-1), t, true)
	s.addSegment(geom.V(0, 0), geom.V(0, h), t, true)
	s.addSegment(geom.V(w-1, 0), geom.V(w-1, h), t, true)
}
