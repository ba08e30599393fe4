package sim

import (
	"time"

	"github.com/san-kum/granular/internal/collision"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/world"
)

// Frame describes one completed frame. Grains is borrowed from the store and
// must not be retained past the callback.
type Frame struct {
	Index   int
	Time    float64
	Grains  []world.Grain
	Stats   collision.Stats
	Emitted int
	Culled  int
}

type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f *Frame)
}

type ObserverFunc func(f *Frame)

func (fn ObserverFunc) OnFrame(f *Frame) { fn(f) }

// RunConfig drives a headless run. EmitPerFrame grains are emitted at EmitAt
// before every frame while EmitFrames is unset or not yet reached.
type RunConfig struct {
	Duration     float64
	Dt           float64
	EmitAt       geom.Vec2
	EmitPerFrame int
	EmitFrames   int
	SampleEvery  int
	CheckFinite  bool
}

// Sample is one row of run telemetry.
type Sample struct {
	Time           float64
	Grains         int
	KineticEnergy  float64
	MaxSpeed       float64
	Contacts       int
	MaxPenetration float64
	Emitted        int
	Culled         int
}

type Result struct {
	Samples []Sample
	Metrics map[string]float64
	Frames  int
	Emitted int
	Culled  int
	Elapsed time.Duration
}
