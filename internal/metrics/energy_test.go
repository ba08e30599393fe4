package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/granular/internal/collision"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/sim"
	"github.com/san-kum/granular/internal/world"
)

func frameWith(vels ...geom.Vec2) *sim.Frame {
	gs := make([]world.Grain, len(vels))
	for i, v := range vels {
		gs[i] = world.Grain{Vel: v, Mass: 2, Radius: 1}
	}
	return &sim.Frame{Grains: gs}
}

func TestEnergy(t *testing.T) {
	m := NewEnergy()
	m.Observe(frameWith(geom.V(3, 4), geom.V(1, 0)))

	// 0.5*2*25 + 0.5*2*1
	if math.Abs(m.Value()-26) > 1e-12 {
		t.Errorf("expected energy 26, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDecay(t *testing.T) {
	m := NewEnergyDecay()
	m.Observe(frameWith(geom.V(10, 0)))
	m.Observe(frameWith(geom.V(5, 0)))

	if math.Abs(m.Value()-0.25) > 1e-12 {
		t.Errorf("expected decay 0.25, got %f", m.Value())
	}
}

func TestMaxMetrics(t *testing.T) {
	pen := NewMaxPenetration()
	speed := NewMaxSpeed()

	f1 := frameWith(geom.V(3, 4))
	f1.Stats = collision.Stats{MaxPenetration: 0.4}
	f2 := frameWith(geom.V(1, 1))
	f2.Stats = collision.Stats{MaxPenetration: 0.1}

	for _, f := range []*sim.Frame{f1, f2} {
		pen.Observe(f)
		speed.Observe(f)
	}
	if pen.Value() != 0.4 {
		t.Errorf("max penetration = %v", pen.Value())
	}
	if speed.Value() != 5 {
		t.Errorf("max speed = %v", speed.Value())
	}
}

func TestSettled(t *testing.T) {
	m := NewSettled(1)
	m.Observe(frameWith(geom.V(0.5, 0)))
	m.Observe(frameWith(geom.V(0.5, 0), geom.V(2, 0)))

	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %v", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected 0 after reset")
	}
}

func TestContactsAndCounts(t *testing.T) {
	contacts := NewContacts()
	count := NewGrainCount()
	culled := NewCulled()

	f := frameWith(geom.Vec2{}, geom.Vec2{}, geom.Vec2{})
	f.Stats.Contacts = 4
	f.Culled = 2
	for i := 0; i < 2; i++ {
		contacts.Observe(f)
		count.Observe(f)
		culled.Observe(f)
	}

	if contacts.Value() != 4 {
		t.Errorf("mean contacts = %v", contacts.Value())
	}
	if count.Value() != 3 {
		t.Errorf("grain count = %v", count.Value())
	}
	if culled.Value() != 4 {
		t.Errorf("culled = %v", culled.Value())
	}
}

func TestDefaultNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
