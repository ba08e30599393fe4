package sandbox

import (
	"math"

	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/geom"
)

// Emitter is the movable spout grains are poured from. Its horizontal
// position stays within Edge of either side of the screen.
type Emitter struct {
	x     float64
	y     float64
	min   float64
	max   float64
	step  float64
	width float64
}

func NewEmitter(cfg *config.Config) *Emitter {
	w := cfg.Screen.Width
	e := &Emitter{
		y:     cfg.Emitter.Y,
		min:   cfg.Emitter.Edge,
		max:   w - cfg.Emitter.Edge,
		step:  cfg.Emitter.Step,
		width: w,
	}
	if e.min > e.max {
		e.min, e.max = w/2, w/2
	}
	e.x = math.Floor(w / 2)
	return e
}

func (e *Emitter) X() float64 { return e.x }

// Pos is the point grains are emitted around.
func (e *Emitter) Pos() geom.Vec2 { return geom.V(e.x, e.y) }

func (e *Emitter) MoveLeft()  { e.SetX(e.x - e.step) }
func (e *Emitter) MoveRight() { e.SetX(e.x + e.step) }

// SetX moves the emitter, clamped to the allowed range.
func (e *Emitter) SetX(x float64) {
	if math.IsNaN(x) {
		return
	}
	e.x = math.Max(e.min, math.Min(x, e.max))
}

// Center puts the emitter back at mid-screen.
func (e *Emitter) Center() { e.SetX(math.Floor(e.width / 2)) }
