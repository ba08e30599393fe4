package metrics

import (
	"github.com/san-kum/granular/internal/sim"
	"github.com/san-kum/granular/internal/world"
)

// Energy reports the total kinetic energy of the last observed frame.
type Energy struct {
	name    string
	current float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f *sim.Frame) {
	e.current = world.KineticEnergy(f.Grains)
}

func (e *Energy) Value() float64 { return e.current }

func (e *Energy) Reset() { e.current = 0 }

// EnergyDecay is the ratio of the last frame's kinetic energy to the peak
// seen so far. A settled world tends to 0.
type EnergyDecay struct {
	name    string
	peak    float64
	current float64
}

func NewEnergyDecay() *EnergyDecay {
	return &EnergyDecay{name: "energy_decay"}
}

func (e *EnergyDecay) Name() string { return e.name }

func (e *EnergyDecay) Observe(f *sim.Frame) {
	e.current = world.KineticEnergy(f.Grains)
	if e.current > e.peak {
		e.peak = e.current
	}
}

func (e *EnergyDecay) Value() float64 {
	if e.peak == 0 {
		return 0
	}
	return e.current / e.peak
}

func (e *EnergyDecay) Reset() {
	e.peak = 0
	e.current = 0
}
