package world

import "github.com/san-kum/granular/internal/geom"

// Tag selects how a body is drawn. It has no physical meaning.
type Tag uint8

const (
	TagSandA Tag = iota
	TagSandB
	TagBarrier
)

// GrainHandle identifies a grain across compactions. The zero value never
// refers to a grain.
type GrainHandle struct {
	index uint32
	gen   uint32
}

func (h GrainHandle) IsZero() bool { return h.gen == 0 }

// SegmentHandle identifies a segment until the next reset.
type SegmentHandle struct {
	index int
	epoch uint32
}

// Grain is a dynamic circular body. Radius, Mass, Friction and Restitution
// are copied from the store parameters and identical for every grain.
type Grain struct {
	Pos         geom.Vec2
	Prev        geom.Vec2 // position before the last integration
	Vel         geom.Vec2
	Radius      float64
	Mass        float64
	InvMass     float64
	Inertia     float64 // stored for completeness; grains do not rotate
	Friction    float64
	Restitution float64
	Tag         Tag
	Seq         uint64

	handle GrainHandle
	dead   bool
}

func (g *Grain) Handle() GrainHandle { return g.handle }

func (g *Grain) KineticEnergy() float64 {
	return 0.5 * g.Mass * g.Vel.LenSq()
}

// Segment is a static capsule-shaped obstacle of the given full thickness.
type Segment struct {
	A, B        geom.Vec2
	Thickness   float64
	Friction    float64
	Restitution float64
	Tag         Tag
	Boundary    bool
}

// Params are the construction-time constants of a store.
type Params struct {
	Width              float64
	Height             float64
	GrainRadius        float64
	GrainMass          float64
	GrainFriction      float64
	GrainRestitution   float64
	SegmentFriction    float64
	SegmentRestitution float64
	BoundaryThickness  float64
	MaxParticles       int
}

// KineticEnergy sums the translational kinetic energy of grains.
func KineticEnergy(grains []Grain) float64 {
	e := 0.0
	for i := range grains {
		e += grains[i].KineticEnergy()
	}
	return e
}
