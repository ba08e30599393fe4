package metrics

import (
	"math"

	"github.com/san-kum/granular/internal/sim"
)

// MaxPenetration is the deepest overlap detected in any frame.
type MaxPenetration struct {
	name string
	max  float64
}

func NewMaxPenetration() *MaxPenetration {
	return &MaxPenetration{name: "max_penetration"}
}

func (m *MaxPenetration) Name() string { return m.name }

func (m *MaxPenetration) Observe(f *sim.Frame) {
	m.max = math.Max(m.max, f.Stats.MaxPenetration)
}

func (m *MaxPenetration) Value() float64 { return m.max }

func (m *MaxPenetration) Reset() { m.max = 0 }

// MaxSpeed is the fastest grain speed seen in any frame.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(f *sim.Frame) {
	for i := range f.Grains {
		m.max = math.Max(m.max, f.Grains[i].Vel.Len())
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }

// Settled is the fraction of frames in which every grain moved slower than
// the threshold.
type Settled struct {
	name      string
	threshold float64
	settled   int
	samples   int
}

func NewSettled(threshold float64) *Settled {
	return &Settled{
		name:      "settled",
		threshold: threshold,
	}
}

func (s *Settled) Name() string { return s.name }

func (s *Settled) Observe(f *sim.Frame) {
	s.samples++
	limit := s.threshold * s.threshold
	for i := range f.Grains {
		if f.Grains[i].Vel.LenSq() > limit {
			return
		}
	}
	s.settled++
}

func (s *Settled) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.settled) / float64(s.samples)
}

func (s *Settled) Reset() {
	s.settled = 0
	s.samples = 0
}
